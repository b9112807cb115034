package user

import (
	"net/http"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/middleware"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler 处理用户资料相关的HTTP请求
type ProfileHandler struct {
	userService service.UserServiceInterface
}

func NewProfileHandler(userService service.UserServiceInterface) *ProfileHandler {
	return &ProfileHandler{userService}
}

// GetProfile 返回当前用户的资料，附带地址列表
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	addresses, err := h.userService.ListAddresses(user.ID)
	if err != nil {
		util.Logger.Error("获取地址列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(user, addresses))
}

// UpdateProfile 更新当前用户的资料，只允许修改用户名和电话号码
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var updateData struct {
		Username    string `json:"username"`
		PhoneNumber string `json:"phone_number" binding:"omitempty,phone"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	updated, err := h.userService.UpdateProfile(user.ID, updateData.Username, updateData.PhoneNumber)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	addresses, err := h.userService.ListAddresses(updated.ID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(updated, addresses))
}

func profileResponse(user *model.User, addresses []*model.Address) gin.H {
	if addresses == nil {
		addresses = []*model.Address{}
	}
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"username":     user.Username,
		"phone_number": user.PhoneNumber,
		"addresses":    addresses,
	}
}
