package user

import (
	"net/http"
	"strconv"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/middleware"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AddressHandler 处理地址相关的HTTP请求，所有操作都限定在当前用户范围内
type AddressHandler struct {
	userService service.UserServiceInterface
}

func NewAddressHandler(userService service.UserServiceInterface) *AddressHandler {
	return &AddressHandler{userService}
}

type addressRequest struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
	IsDefault  bool   `json:"is_default"`
}

// ListAddresses 返回当前用户的地址列表
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	user := middleware.CurrentUser(c)

	addresses, err := h.userService.ListAddresses(user.ID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if addresses == nil {
		addresses = []*model.Address{}
	}

	c.JSON(http.StatusOK, addresses)
}

// CreateAddress 为当前用户创建地址
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	address := &model.Address{
		UserID:     user.ID,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}

	if err := h.userService.CreateAddress(address); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

// GetAddress 返回当前用户的单个地址
func (h *AddressHandler) GetAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "Not found."))
		return
	}

	address, err := h.userService.GetAddress(user.ID, id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// UpdateAddress 更新当前用户的地址
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "Not found."))
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	updated := &model.Address{
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}

	address, err := h.userService.UpdateAddress(user.ID, id, updated)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// addressPatchRequest 部分更新的请求体，缺省字段保持原值
type addressPatchRequest struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	IsDefault  *bool   `json:"is_default"`
}

// PatchAddress 部分更新当前用户的地址，只覆盖请求中出现的字段
func (h *AddressHandler) PatchAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "Not found."))
		return
	}

	var req addressPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	existing, err := h.userService.GetAddress(user.ID, id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	updated := &model.Address{
		Street:     existing.Street,
		City:       existing.City,
		State:      existing.State,
		PostalCode: existing.PostalCode,
		Country:    existing.Country,
		IsDefault:  existing.IsDefault,
	}
	if req.Street != nil {
		updated.Street = *req.Street
	}
	if req.City != nil {
		updated.City = *req.City
	}
	if req.State != nil {
		updated.State = *req.State
	}
	if req.PostalCode != nil {
		updated.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		updated.Country = *req.Country
	}
	if req.IsDefault != nil {
		updated.IsDefault = *req.IsDefault
	}

	address, err := h.userService.UpdateAddress(user.ID, id, updated)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// DeleteAddress 删除当前用户的地址
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "Not found."))
		return
	}

	if err := h.userService.DeleteAddress(user.ID, id); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
