package model

import "time"

// FileType 文件类型分类，保存时根据扩展名重新推导
type FileType string

const (
	FileTypePDF   FileType = "PDF"
	FileTypeExcel FileType = "EXCEL"
	FileTypeTxt   FileType = "TXT"
	FileTypeOther FileType = "OTHER"
)

// UploadedFile 用户上传的文件元数据，实际内容存储在外部 Blob 存储中
type UploadedFile struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	StoragePath      string    `json:"-"` // Blob 存储定位符，不直接暴露
	OriginalFilename string    `json:"original_filename"`
	FileType         FileType  `json:"file_type"`
	UploadDate       time.Time `json:"upload_date"`
	FileURL          string    `json:"file_url,omitempty"` // 响应时由存储后端填充
}

// DashboardStats 仪表盘统计数据，UsersFiles 仅对管理员可见
type DashboardStats struct {
	TotalFiles int              `json:"total_files"`
	FileTypes  map[FileType]int `json:"file_types"`
	UsersFiles []UserFileCount  `json:"users_files,omitempty"`
}

// UserFileCount 单个用户的文件数量统计
type UserFileCount struct {
	Email     string `json:"email"`
	FileCount int    `json:"file_count"`
}
