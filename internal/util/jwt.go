package util

import (
	"errors"
	"time"

	"github.com/MadhusudanDhakad/file-management-app/config"

	"github.com/dgrijalva/jwt-go"
)

const (
	accessTokenTTL  = time.Hour * 1
	refreshTokenTTL = time.Hour * 24 * 7

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair 登录成功后签发的访问令牌和刷新令牌
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// GenerateAccessToken 签发访问令牌，额外嵌入 email 和 username 声明，
// 下游服务展示用户信息时无需再查库
func GenerateAccessToken(userID int, email, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"email":      email,
		"username":   username,
		"token_type": TokenTypeAccess,
		"exp":        time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// GenerateRefreshToken 签发刷新令牌
func GenerateRefreshToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"token_type": TokenTypeRefresh,
		"exp":        time.Now().Add(refreshTokenTTL).Unix(),
	})
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// GenerateTokenPair 签发访问令牌和刷新令牌对
func GenerateTokenPair(userID int, email, username string) (*TokenPair, error) {
	access, err := GenerateAccessToken(userID, email, username)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateToken 验证令牌并返回用户ID，tokenType 必须与令牌中的 token_type 声明一致
func ValidateToken(tokenString, tokenType string) (int, error) {
	if tokenString == "" {
		return 0, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("意外的签名方法")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("无效的令牌")
	}

	if claims["token_type"] != tokenType {
		return 0, errors.New("令牌类型不匹配")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("无效的用户ID")
	}
	return int(userID), nil
}
