package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/repository/interfaces"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// phoneRegex 国际电话号码格式
var phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)

const phoneFormatMessage = "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed."

// UserService 处理与用户和地址相关的业务逻辑
type UserService struct {
	userRepo     interfaces.UserRepository
	emailService *EmailService
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		emailService: NewEmailService(),
	}
}

// NormalizeEmail 邮箱统一小写处理，作为规范的登录标识
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 注册新用户。邮箱和用户名都必须唯一，密码在持久化前单向哈希
func (s *UserService) Register(user *model.User, password string) error {
	user.Email = NormalizeEmail(user.Email)

	fields := make(map[string][]string)

	existing, err := s.userRepo.FindByEmail(user.Email)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if existing != nil {
		fields["email"] = append(fields["email"], "user with this email already exists.")
	}

	existing, err = s.userRepo.FindByUsername(user.Username)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if existing != nil {
		fields["username"] = append(fields["username"], "user with this username already exists.")
	}

	if user.PhoneNumber != "" && !phoneRegex.MatchString(user.PhoneNumber) {
		fields["phone_number"] = append(fields["phone_number"], phoneFormatMessage)
	}

	if len(fields) > 0 {
		return errors.NewValidation(fields)
	}

	// 生成密码哈希，原始密码不落库也不写日志
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "生成密码哈希失败", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	if err := s.userRepo.Create(user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建用户失败", err)
	}

	// 发送欢迎邮件，失败只记录日志
	if err := s.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
		util.Logger.Error("发送欢迎邮件失败", zap.Error(err))
	}

	util.Logger.Info("用户注册成功", zap.Int("user_id", user.ID))
	return nil
}

// Authenticate 验证登录凭证。凭证错误和用户不存在返回同一个错误，
// 避免泄露账户是否存在；账户被禁用返回有区分度的消息
func (s *UserService) Authenticate(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(NormalizeEmail(email))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "Invalid email or password")
	}

	// 凭证检查通过后再检查账户状态
	if !user.IsActive {
		return nil, errors.New(errors.ErrAccountDisabled, "User account is disabled")
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Not found.")
	}
	return user, nil
}

// UpdateProfile 更新用户资料，只允许修改用户名和电话号码，邮箱和密码不走此路径
func (s *UserService) UpdateProfile(userID int, username, phoneNumber string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		existing, err := s.userRepo.FindByUsername(username)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
		}
		if existing != nil {
			return nil, errors.NewFieldError("username", "user with this username already exists.")
		}
		user.Username = username
	}

	if phoneNumber != "" {
		if !phoneRegex.MatchString(phoneNumber) {
			return nil, errors.NewFieldError("phone_number", phoneFormatMessage)
		}
		user.PhoneNumber = phoneNumber
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新用户失败", err)
	}
	return user, nil
}

// ListAddresses 返回用户的地址列表
func (s *UserService) ListAddresses(userID int) ([]*model.Address, error) {
	return s.userRepo.ListUserAddresses(userID)
}

// CreateAddress 创建地址，默认地址的互斥由仓库层事务保证
func (s *UserService) CreateAddress(address *model.Address) error {
	if err := validateAddress(address); err != nil {
		return err
	}

	if err := s.userRepo.CreateAddress(address); err != nil {
		util.Logger.Error("创建地址失败",
			zap.Error(err),
			zap.Int("user_id", address.UserID))
		return errors.Wrap(errors.ErrDatabase, "创建地址失败", err)
	}
	return nil
}

// GetAddress 查找属于该用户的地址，不存在或不属于该用户时返回 NotFound
func (s *UserService) GetAddress(userID, id int) (*model.Address, error) {
	address, err := s.userRepo.GetUserAddress(userID, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询地址失败", err)
	}
	if address == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Not found.")
	}
	return address, nil
}

// UpdateAddress 更新地址，地址不存在或不属于该用户时返回 NotFound
func (s *UserService) UpdateAddress(userID, id int, updated *model.Address) (*model.Address, error) {
	address, err := s.userRepo.GetUserAddress(userID, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询地址失败", err)
	}
	if address == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Not found.")
	}

	address.Street = updated.Street
	address.City = updated.City
	address.State = updated.State
	address.PostalCode = updated.PostalCode
	address.Country = updated.Country
	address.IsDefault = updated.IsDefault

	if err := validateAddress(address); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAddress(address); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新地址失败", err)
	}
	return address, nil
}

// DeleteAddress 删除地址，地址不存在或不属于该用户时返回 NotFound
func (s *UserService) DeleteAddress(userID, id int) error {
	address, err := s.userRepo.GetUserAddress(userID, id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询地址失败", err)
	}
	if address == nil {
		return errors.New(errors.ErrResourceNotFound, "Not found.")
	}

	if err := s.userRepo.DeleteAddress(userID, id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除地址失败", err)
	}
	return nil
}

func validateAddress(address *model.Address) error {
	fields := make(map[string][]string)
	required := map[string]string{
		"street":      address.Street,
		"city":        address.City,
		"state":       address.State,
		"postal_code": address.PostalCode,
		"country":     address.Country,
	}
	for name, value := range required {
		if value == "" {
			fields[name] = append(fields[name], "This field is required.")
		}
	}
	if len(fields) > 0 {
		return errors.NewValidation(fields)
	}
	return nil
}

// UserServiceInterface 处理器依赖的用户服务契约
type UserServiceInterface interface {
	Register(user *model.User, password string) error
	Authenticate(email, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateProfile(userID int, username, phoneNumber string) (*model.User, error)
	ListAddresses(userID int) ([]*model.Address, error)
	GetAddress(userID, id int) (*model.Address, error)
	CreateAddress(address *model.Address) error
	UpdateAddress(userID, id int, updated *model.Address) (*model.Address, error)
	DeleteAddress(userID, id int) error
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
