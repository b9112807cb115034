package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrStorage:  http.StatusInternalServerError,
	ErrTimeout:  http.StatusRequestTimeout,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrTokenExpired:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrAccountDisabled:    http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrPayloadTooLarge:  http.StatusBadRequest,
}

// HandleError 统一处理错误响应。
// 字段级验证错误渲染为 字段 -> 消息列表 的映射，其余错误渲染为 {"detail": ...}
func HandleError(c *gin.Context, err error) {
	// 记录到 gin 错误列表，供错误监控中间件统计
	_ = c.Error(err)

	if appErr, ok := err.(*AppError); ok {
		status := errorStatusMap[appErr.Code]
		if status == 0 {
			status = http.StatusInternalServerError
		}

		if appErr.Fields != nil {
			c.JSON(status, appErr.Fields)
			return
		}

		c.JSON(status, gin.H{"detail": appErr.Message})
		return
	}

	// 处理非 AppError 类型的错误
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
