package middleware

import (
	"strings"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserKey 上下文中已认证用户的键
	ContextUserKey = "current_user"
	// ContextUserIDKey 上下文中已认证用户ID的键
	ContextUserIDKey = "user_id"
)

// AuthMiddleware 在请求边界解析一次访问令牌，加载用户后放入上下文，
// 后续处理器直接从上下文取已认证身份，不再做全局查找
func AuthMiddleware(userService service.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication credentials were not provided."))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Invalid authorization header format."))
			c.Abort()
			return
		}

		userID, err := util.ValidateToken(parts[1], util.TokenTypeAccess)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Token is invalid or expired.", err))
			c.Abort()
			return
		}

		user, err := userService.GetUserByID(userID)
		if err != nil {
			// 用户不存在按无效令牌处理，数据库故障原样上抛成服务器错误
			if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrResourceNotFound {
				util.Logger.Warn("令牌对应的用户不存在", zap.Int("user_id", userID))
				errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Token is invalid or expired."))
			} else {
				util.Logger.Error("加载令牌用户失败", zap.Error(err), zap.Int("user_id", userID))
				errors.HandleError(c, err)
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			errors.HandleError(c, errors.New(errors.ErrAccountDisabled, "User account is disabled"))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser 从上下文取出认证中间件放入的用户，未认证时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
