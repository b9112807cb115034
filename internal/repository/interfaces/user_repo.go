package interfaces

import "github.com/MadhusudanDhakad/file-management-app/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法。
// 查找方法在记录不存在时返回 (nil, nil)
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	Update(user *model.User) error
	Delete(id int) error
	CreateAddress(address *model.Address) error
	UpdateAddress(address *model.Address) error
	DeleteAddress(userID, id int) error
	GetUserAddress(userID, id int) (*model.Address, error)
	ListUserAddresses(userID int) ([]*model.Address, error)
}
