package util

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MadhusudanDhakad/file-management-app/internal/model"
)

// GenerateUniqueFilename 生成唯一的存储文件名
func GenerateUniqueFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := filepath.Base(originalFilename)
	name = name[:len(name)-len(ext)]

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return name + "_" + timestamp + ext
}

// ClassifyFileType 根据文件名扩展名推导文件类型，不区分大小写。
// 每次保存都重新推导，改名重传的文件会按新扩展名重新分类。
func ClassifyFileType(filename string) model.FileType {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "PDF":
		return model.FileTypePDF
	case "XLS", "XLSX", "CSV":
		return model.FileTypeExcel
	case "TXT":
		return model.FileTypeTxt
	default:
		return model.FileTypeOther
	}
}
