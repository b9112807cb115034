package storage

import "mime/multipart"

// Storage 定义 Blob 存储后端需要实现的方法。
// UploadFile 返回存储定位符，FileURL 将定位符解析为可下载的绝对地址
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
	DeleteFile(path string) error
	FileURL(path string) string
}
