package user

import (
	"net/http"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Email       string `json:"email" binding:"required,email"`
		Username    string `json:"username" binding:"required"`
		Password    string `json:"password" binding:"required"`
		PhoneNumber string `json:"phone_number" binding:"omitempty,phone"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	user := &model.User{
		Email:       registerData.Email,
		Username:    registerData.Username,
		PhoneNumber: registerData.PhoneNumber,
	}

	if err := h.userService.Register(user, registerData.Password); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"username":     user.Username,
		"phone_number": user.PhoneNumber,
	})
}

// Login 处理用户登录请求。先校验凭证再签发令牌，
// 被禁用的账户返回与凭证错误不同的提示
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	user, err := h.userService.Authenticate(loginData.Email, loginData.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":   tokens.AccessToken,
		"refresh":  tokens.RefreshToken,
		"email":    user.Email,
		"username": user.Username,
	})
}

// Refresh 用刷新令牌换取新的访问令牌
func (h *AuthHandler) Refresh(c *gin.Context) {
	var refreshData struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	if err := c.ShouldBindJSON(&refreshData); err != nil {
		errors.HandleError(c, errors.FromBindingError(err))
		return
	}

	userID, err := util.ValidateToken(refreshData.Refresh, util.TokenTypeRefresh)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Token is invalid or expired.", err))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		// 用户不存在按无效令牌处理，数据库故障原样上抛成服务器错误
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrResourceNotFound {
			errors.HandleError(c, errors.New(errors.ErrInvalidToken, "Token is invalid or expired."))
		} else {
			errors.HandleError(c, err)
		}
		return
	}

	access, err := util.GenerateAccessToken(user.ID, user.Email, user.Username)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
