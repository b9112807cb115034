package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MadhusudanDhakad/file-management-app/config"
	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	config.AppConfig = config.Config{JWTSecret: "test-secret"}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("phone", util.ValidatePhoneNumber)
	}
	m.Run()
}

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(user *model.User, password string) error {
	args := m.Called(user, password)
	return args.Error(0)
}

func (m *MockUserService) Authenticate(email, password string) (*model.User, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(userID int, username, phoneNumber string) (*model.User, error) {
	args := m.Called(userID, username, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListAddresses(userID int) ([]*model.Address, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Address), args.Error(1)
}

func (m *MockUserService) GetAddress(userID, id int) (*model.Address, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockUserService) CreateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserService) UpdateAddress(userID, id int, updated *model.Address) (*model.Address, error) {
	args := m.Called(userID, id, updated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockUserService) DeleteAddress(userID, id int) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

func setupAuthRouter(mockService *MockUserService) *gin.Engine {
	handler := NewAuthHandler(mockService)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestRegisterHandler 测试注册接口返回 201 和用户摘要
func TestRegisterHandler(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("Register", mock.AnythingOfType("*model.User"), "password123").
		Run(func(args mock.Arguments) {
			args.Get(0).(*model.User).ID = 1
		}).Return(nil)

	w := postJSON(r, "/auth/register", gin.H{
		"email":    "new@example.com",
		"username": "newuser",
		"password": "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["id"])
	assert.Equal(t, "new@example.com", resp["email"])
	assert.NotContains(t, resp, "password")
}

// TestRegisterHandlerMissingFields 缺失字段返回字段到消息列表的映射
func TestRegisterHandlerMissingFields(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	w := postJSON(r, "/auth/register", gin.H{"email": "new@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"This field is required."}, resp["username"])
	assert.Equal(t, []string{"This field is required."}, resp["password"])
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

// TestRegisterHandlerInvalidPhone 电话号码格式错误返回 DRF 风格的提示
func TestRegisterHandlerInvalidPhone(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	w := postJSON(r, "/auth/register", gin.H{
		"email":        "new@example.com",
		"username":     "newuser",
		"password":     "password123",
		"phone_number": "not-a-phone",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t,
		[]string{"Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed."},
		resp["phone_number"])
}

// TestRegisterHandlerDuplicateEmail 重复邮箱返回字段级错误
func TestRegisterHandlerDuplicateEmail(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("Register", mock.AnythingOfType("*model.User"), "password123").
		Return(errors.NewValidation(map[string][]string{
			"email": {"user with this email already exists."},
		}))

	w := postJSON(r, "/auth/register", gin.H{
		"email":    "taken@example.com",
		"username": "newuser",
		"password": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"user with this email already exists."}, resp["email"])
}

// TestLoginHandler 登录成功返回令牌对和用户信息
func TestLoginHandler(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("Authenticate", "test@example.com", "password123").
		Return(&model.User{ID: 1, Email: "test@example.com", Username: "testuser", IsActive: true}, nil)

	w := postJSON(r, "/auth/login", gin.H{
		"email":    "test@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access"])
	assert.NotEmpty(t, resp["refresh"])
	assert.Equal(t, "test@example.com", resp["email"])
	assert.Equal(t, "testuser", resp["username"])
}

// TestLoginHandlerInvalidCredentials 凭证错误返回 401 和通用提示
func TestLoginHandlerInvalidCredentials(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("Authenticate", "test@example.com", "wrongpassword").
		Return(nil, errors.New(errors.ErrInvalidCredentials, "Invalid email or password"))

	w := postJSON(r, "/auth/login", gin.H{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid email or password", resp["detail"])
}

// TestLoginHandlerDisabledAccount 禁用账户返回 401 和有区分度的提示
func TestLoginHandlerDisabledAccount(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("Authenticate", "disabled@example.com", "password123").
		Return(nil, errors.New(errors.ErrAccountDisabled, "User account is disabled"))

	w := postJSON(r, "/auth/login", gin.H{
		"email":    "disabled@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User account is disabled", resp["detail"])
}

// TestRefreshHandler 刷新令牌换取新的访问令牌
func TestRefreshHandler(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("GetUserByID", 1).
		Return(&model.User{ID: 1, Email: "test@example.com", Username: "testuser", IsActive: true}, nil)

	refresh, err := util.GenerateRefreshToken(1)
	assert.NoError(t, err)

	w := postJSON(r, "/auth/refresh", gin.H{"refresh": refresh})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access"])
	assert.NotContains(t, resp, "refresh")
}

// TestRefreshHandlerUnknownUser 令牌对应的用户不存在时按无效令牌处理
func TestRefreshHandlerUnknownUser(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("GetUserByID", 1).
		Return(nil, errors.New(errors.ErrResourceNotFound, "Not found."))

	refresh, err := util.GenerateRefreshToken(1)
	assert.NoError(t, err)

	w := postJSON(r, "/auth/refresh", gin.H{"refresh": refresh})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Token is invalid or expired.", resp["detail"])
}

// TestRefreshHandlerStoreFailure 数据库故障不能伪装成认证失败
func TestRefreshHandlerStoreFailure(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	mockService.On("GetUserByID", 1).
		Return(nil, fmt.Errorf("查询用户失败: connection refused"))

	refresh, err := util.GenerateRefreshToken(1)
	assert.NoError(t, err)

	w := postJSON(r, "/auth/refresh", gin.H{"refresh": refresh})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp["detail"])
}

// TestRefreshHandlerRejectsAccessToken 访问令牌不能当作刷新令牌使用
func TestRefreshHandlerRejectsAccessToken(t *testing.T) {
	mockService := new(MockUserService)
	r := setupAuthRouter(mockService)

	access, err := util.GenerateAccessToken(1, "test@example.com", "testuser")
	assert.NoError(t, err)

	w := postJSON(r, "/auth/refresh", gin.H{"refresh": access})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Token is invalid or expired.", resp["detail"])
	mockService.AssertNotCalled(t, "GetUserByID", mock.Anything)
}
