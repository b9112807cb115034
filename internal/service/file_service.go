package service

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/repository/interfaces"
	"github.com/MadhusudanDhakad/file-management-app/internal/storage"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"go.uber.org/zap"
)

// MaxUploadSize 单个上传文件的大小上限
const MaxUploadSize = 10 << 20 // 10 MiB

// FileService 处理文件上传、下载和删除的业务逻辑
type FileService struct {
	fileRepo interfaces.FileRepository
	storage  storage.Storage
}

// NewFileService 创建一个新的 FileService 实例
func NewFileService(fileRepo interfaces.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

// Upload 保存上传的文件。先写入 Blob 存储，再持久化元数据，
// 文件类型在每次保存时根据文件名重新推导
func (s *FileService) Upload(userID int, file *multipart.FileHeader) (*model.UploadedFile, error) {
	if file.Size > MaxUploadSize {
		return nil, &errors.AppError{
			Code:    errors.ErrPayloadTooLarge,
			Message: "File size exceeds 10MB limit.",
			Fields:  map[string][]string{"file": {"File size exceeds 10MB limit."}},
		}
	}

	path := fmt.Sprintf("files/%d/%s", userID, util.GenerateUniqueFilename(file.Filename))
	locator, err := s.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传文件到存储后端失败",
			zap.Error(err),
			zap.Int("user_id", userID))
		return nil, errors.Wrap(errors.ErrStorage, "上传文件失败", err)
	}

	uploaded := &model.UploadedFile{
		UserID:           userID,
		StoragePath:      locator,
		OriginalFilename: file.Filename,
		FileType:         util.ClassifyFileType(file.Filename),
		UploadDate:       time.Now(),
	}

	if err := s.fileRepo.Create(uploaded); err != nil {
		util.Logger.Error("保存文件元数据失败",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.String("storage_path", locator))
		return nil, errors.Wrap(errors.ErrDatabase, "保存文件元数据失败", err)
	}

	uploaded.FileURL = s.storage.FileURL(locator)
	util.Logger.Info("文件上传成功",
		zap.Int("file_id", uploaded.ID),
		zap.Int("user_id", userID),
		zap.String("file_type", string(uploaded.FileType)))
	return uploaded, nil
}

// List 返回用户的文件列表，按上传时间倒序
func (s *FileService) List(userID int) ([]*model.UploadedFile, error) {
	files, err := s.fileRepo.ListByUser(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询文件列表失败", err)
	}
	for _, file := range files {
		file.FileURL = s.storage.FileURL(file.StoragePath)
	}
	return files, nil
}

// GetFile 查找属于该用户的文件，不存在或不属于该用户时返回 NotFound
func (s *FileService) GetFile(userID, id int) (*model.UploadedFile, error) {
	file, err := s.fileRepo.FindByIDAndUser(id, userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询文件失败", err)
	}
	if file == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Not found.")
	}
	file.FileURL = s.storage.FileURL(file.StoragePath)
	return file, nil
}

// Delete 删除文件：先删 Blob 再删元数据行。
// Blob 删除成功后元数据删除失败会留下指向缺失 Blob 的记录，
// 这里只记录日志不做补偿，错误原样向上传播
func (s *FileService) Delete(userID, id int) error {
	file, err := s.GetFile(userID, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteFile(file.StoragePath); err != nil {
		util.Logger.Error("删除存储文件失败",
			zap.Error(err),
			zap.Int("file_id", file.ID))
		return errors.Wrap(errors.ErrStorage, "删除存储文件失败", err)
	}

	if err := s.fileRepo.Delete(file.ID); err != nil {
		util.Logger.Error("删除文件元数据失败，记录已指向缺失的Blob",
			zap.Error(err),
			zap.Int("file_id", file.ID),
			zap.String("storage_path", file.StoragePath))
		return errors.Wrap(errors.ErrDatabase, "删除文件元数据失败", err)
	}

	util.Logger.Info("文件删除成功",
		zap.Int("file_id", file.ID),
		zap.Int("user_id", userID))
	return nil
}

// FileServiceInterface 处理器依赖的文件服务契约
type FileServiceInterface interface {
	Upload(userID int, file *multipart.FileHeader) (*model.UploadedFile, error)
	List(userID int) ([]*model.UploadedFile, error)
	GetFile(userID, id int) (*model.UploadedFile, error)
	Delete(userID, id int) error
}

// 确保 FileService 实现了 FileServiceInterface
var _ FileServiceInterface = (*FileService)(nil)
