package service

import (
	"testing"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	m.Run()
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) CreateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteAddress(userID, id int) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserAddress(userID, id int) (*model.Address, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockUserRepository) ListUserAddresses(userID int) ([]*model.Address, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Address), args.Error(1)
}

// TestRegister 测试用户注册功能
func TestRegister(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	user := &model.User{
		Email:       "Test@Example.com",
		Username:    "testuser",
		PhoneNumber: "+8613912345678",
	}

	// 测试成功注册：密码被哈希，账户激活，邮箱被小写化
	mockRepo.On("FindByEmail", "test@example.com").Return(nil, nil)
	mockRepo.On("FindByUsername", "testuser").Return(nil, nil)
	mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.Register(user, "password123")
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)
}

// TestRegisterDuplicateEmail 测试邮箱重复时的注册失败
func TestRegisterDuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByEmail", "taken@example.com").Return(&model.User{ID: 2}, nil)
	mockRepo.On("FindByUsername", "newuser").Return(nil, nil)

	err := service.Register(&model.User{Email: "taken@example.com", Username: "newuser"}, "password123")
	assert.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "email")
}

// TestRegisterDuplicateUsername 测试用户名重复时的注册失败
func TestRegisterDuplicateUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByEmail", "new@example.com").Return(nil, nil)
	mockRepo.On("FindByUsername", "taken").Return(&model.User{ID: 2}, nil)

	err := service.Register(&model.User{Email: "new@example.com", Username: "taken"}, "password123")
	assert.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Contains(t, appErr.Fields, "username")
}

// TestRegisterInvalidPhone 测试电话号码格式校验
func TestRegisterInvalidPhone(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByEmail", "new@example.com").Return(nil, nil)
	mockRepo.On("FindByUsername", "newuser").Return(nil, nil)

	err := service.Register(&model.User{
		Email:       "new@example.com",
		Username:    "newuser",
		PhoneNumber: "abc123",
	}, "password123")
	assert.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Contains(t, appErr.Fields, "phone_number")
}

func hashedUser(password string, active bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &model.User{
		ID:           1,
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: string(hash),
		IsActive:     active,
	}
}

// TestAuthenticate 测试凭证校验
func TestAuthenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByEmail", "test@example.com").Return(hashedUser("password123", true), nil)

	user, err := service.Authenticate("Test@Example.COM", "password123")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.ID)
}

// TestAuthenticateWrongPassword 密码错误和用户不存在必须返回同样的提示
func TestAuthenticateWrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByEmail", "test@example.com").Return(hashedUser("password123", true), nil)
	mockRepo.On("FindByEmail", "unknown@example.com").Return(nil, nil)

	_, err := service.Authenticate("test@example.com", "wrongpassword")
	assert.Error(t, err)
	wrongPass := err.(*errors.AppError)
	assert.Equal(t, errors.ErrInvalidCredentials, wrongPass.Code)

	_, err = service.Authenticate("unknown@example.com", "password123")
	assert.Error(t, err)
	unknown := err.(*errors.AppError)
	assert.Equal(t, errors.ErrInvalidCredentials, unknown.Code)

	// 两种失败给出完全一致的消息，避免枚举账户
	assert.Equal(t, wrongPass.Message, unknown.Message)
}

// TestAuthenticateDisabledAccount 被禁用的账户返回有区分度的提示
func TestAuthenticateDisabledAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByEmail", "test@example.com").Return(hashedUser("password123", false), nil)

	_, err := service.Authenticate("test@example.com", "password123")
	assert.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrAccountDisabled, appErr.Code)
	assert.Equal(t, "User account is disabled", appErr.Message)
}

// TestUpdateProfile 测试资料更新只修改用户名和电话号码
func TestUpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	current := &model.User{ID: 1, Email: "test@example.com", Username: "olduser"}
	mockRepo.On("FindByID", 1).Return(current, nil)
	mockRepo.On("FindByUsername", "newuser").Return(nil, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	updated, err := service.UpdateProfile(1, "newuser", "+8613912345678")
	assert.NoError(t, err)
	assert.Equal(t, "newuser", updated.Username)
	assert.Equal(t, "+8613912345678", updated.PhoneNumber)
	assert.Equal(t, "test@example.com", updated.Email)
	mockRepo.AssertExpectations(t)
}

// TestUpdateAddressNotOwned 更新不属于自己的地址返回 NotFound
func TestUpdateAddressNotOwned(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("GetUserAddress", 1, 99).Return(nil, nil)

	_, err := service.UpdateAddress(1, 99, &model.Address{Street: "s", City: "c", State: "st", PostalCode: "p", Country: "cn"})
	assert.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrResourceNotFound, appErr.Code)
}

// TestDeleteAddressNotOwned 删除不属于自己的地址返回 NotFound
func TestDeleteAddressNotOwned(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("GetUserAddress", 1, 99).Return(nil, nil)

	err := service.DeleteAddress(1, 99)
	assert.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrResourceNotFound, appErr.Code)
	mockRepo.AssertNotCalled(t, "DeleteAddress", 1, 99)
}

// TestCreateAddressMissingFields 缺失必填字段返回字段级验证错误
func TestCreateAddressMissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	err := service.CreateAddress(&model.Address{UserID: 1, Street: "123 Main St"})
	assert.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "city")
	assert.Contains(t, appErr.Fields, "country")
	mockRepo.AssertNotCalled(t, "CreateAddress", mock.Anything)
}
