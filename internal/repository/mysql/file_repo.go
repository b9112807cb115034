package mysql

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/MadhusudanDhakad/file-management-app/internal/model"
)

// fileRepository 实现了 FileRepository 接口
type fileRepository struct {
	db *sql.DB
}

// NewFileRepository 创建一个新的 fileRepository 实例
func NewFileRepository(db *sql.DB) *fileRepository {
	return &fileRepository{db}
}

// Create 保存上传文件的元数据
func (r *fileRepository) Create(file *model.UploadedFile) error {
	query := `INSERT INTO uploaded_files (user_id, storage_path, original_filename, file_type, upload_date)
              VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		file.UserID, file.StoragePath, file.OriginalFilename, file.FileType, file.UploadDate)
	if err != nil {
		log.Printf("保存文件元数据失败：%v", err)
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	file.ID = int(id)
	log.Printf("文件元数据保存成功：ID=%d", file.ID)
	return nil
}

// FindByIDAndUser 查找属于指定用户的文件，不存在或不属于该用户时返回 (nil, nil)
func (r *fileRepository) FindByIDAndUser(id, userID int) (*model.UploadedFile, error) {
	var file model.UploadedFile
	query := `SELECT id, user_id, storage_path, original_filename, file_type, upload_date
              FROM uploaded_files WHERE id = ? AND user_id = ?`
	err := r.db.QueryRow(query, id, userID).Scan(
		&file.ID, &file.UserID, &file.StoragePath,
		&file.OriginalFilename, &file.FileType, &file.UploadDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// ListByUser 返回用户的文件列表，按上传时间倒序排列
func (r *fileRepository) ListByUser(userID int) ([]*model.UploadedFile, error) {
	query := `SELECT id, user_id, storage_path, original_filename, file_type, upload_date
              FROM uploaded_files
              WHERE user_id = ?
              ORDER BY upload_date DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*model.UploadedFile
	for rows.Next() {
		var file model.UploadedFile
		err := rows.Scan(
			&file.ID, &file.UserID, &file.StoragePath,
			&file.OriginalFilename, &file.FileType, &file.UploadDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, &file)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

// Delete 删除文件元数据记录
func (r *fileRepository) Delete(id int) error {
	query := `DELETE FROM uploaded_files WHERE id = ?`
	_, err := r.db.Exec(query, id)
	return err
}

// CountByUser 返回用户的文件总数
func (r *fileRepository) CountByUser(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM uploaded_files WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByTypeForUser 按文件类型统计用户的文件数量
func (r *fileRepository) CountByTypeForUser(userID int) (map[model.FileType]int, error) {
	query := `SELECT file_type, COUNT(*) FROM uploaded_files WHERE user_id = ? GROUP BY file_type`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file type counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.FileType]int)
	for rows.Next() {
		var fileType model.FileType
		var count int
		if err := rows.Scan(&fileType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan file type count: %w", err)
		}
		counts[fileType] = count
	}
	return counts, rows.Err()
}

// CountPerUser 统计每个用户的文件数量。LEFT JOIN 保证没有文件的用户也出现在结果里
func (r *fileRepository) CountPerUser() ([]model.UserFileCount, error) {
	query := `SELECT u.email, COUNT(f.id)
              FROM users u
              LEFT JOIN uploaded_files f ON f.user_id = u.id
              GROUP BY u.id, u.email
              ORDER BY u.email`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-user counts: %w", err)
	}
	defer rows.Close()

	var counts []model.UserFileCount
	for rows.Next() {
		var c model.UserFileCount
		if err := rows.Scan(&c.Email, &c.FileCount); err != nil {
			return nil, fmt.Errorf("failed to scan per-user count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
