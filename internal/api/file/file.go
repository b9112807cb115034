package file

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/middleware"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileHandler 处理文件相关的HTTP请求，所有操作都限定在当前用户范围内
type FileHandler struct {
	fileService service.FileServiceInterface
}

func NewFileHandler(fileService service.FileServiceInterface) *FileHandler {
	return &FileHandler{fileService}
}

// Upload 处理文件上传请求
func (h *FileHandler) Upload(c *gin.Context) {
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Logger.Warn("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.NewFieldError("file", "No file was submitted."))
		return
	}

	uploaded, err := h.fileService.Upload(user.ID, fileHeader)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploaded)
}

// List 返回当前用户的文件列表，按上传时间倒序
func (h *FileHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	files, err := h.fileService.List(user.ID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if files == nil {
		files = []*model.UploadedFile{}
	}

	c.JSON(http.StatusOK, files)
}

// Download 以附件方式下载文件：设置原始文件名的 Content-Disposition，
// 重定向到 Blob 存储地址，字节流由存储层负责
func (h *FileHandler) Download(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "Not found."))
		return
	}

	file, err := h.fileService.GetFile(user.ID, id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalFilename))
	c.Redirect(http.StatusFound, file.FileURL)
}

// Delete 删除当前用户的文件
func (h *FileHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrResourceNotFound, "Not found."))
		return
	}

	if err := h.fileService.Delete(user.ID, id); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
