package interfaces

import "github.com/MadhusudanDhakad/file-management-app/internal/model"

// FileRepository 接口定义了上传文件仓库应该实现的方法。
// 所有按用户查询的方法都必须以 user_id 过滤
type FileRepository interface {
	Create(file *model.UploadedFile) error
	FindByIDAndUser(id, userID int) (*model.UploadedFile, error)
	ListByUser(userID int) ([]*model.UploadedFile, error)
	Delete(id int) error
	CountByUser(userID int) (int, error)
	CountByTypeForUser(userID int) (map[model.FileType]int, error)
	CountPerUser() ([]model.UserFileCount, error)
}
