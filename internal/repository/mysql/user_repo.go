package mysql

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	log.Printf("尝试创建新用户：%s", user.Email)
	query := `INSERT INTO users (email, username, password_hash, phone_number, is_active, is_staff)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, user.Email, user.Username, user.PasswordHash, user.PhoneNumber, user.IsActive, user.IsStaff)
	if err != nil {
		log.Printf("创建用户失败：%v", err)
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		log.Printf("获取新用户ID失败：%v", err)
		return err
	}
	user.ID = int(id)
	log.Printf("用户创建成功：ID=%d", user.ID)
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, phone_number, is_active, is_staff, created_at, updated_at
              FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRow(query, id))
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, phone_number, is_active, is_staff, created_at, updated_at
              FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRow(query, email))
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, phone_number, is_active, is_staff, created_at, updated_at
              FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRow(query, username))
}

func (r *userRepository) scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.PhoneNumber,
		&user.IsActive, &user.IsStaff, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update 更新用户信息，邮箱和密码不走此路径
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET username = ?, phone_number = ?, is_active = ?, is_staff = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.PhoneNumber, user.IsActive, user.IsStaff, time.Now(), user.ID)
	return err
}

// Delete 删除用户。级联删除在此显式执行：先删地址和文件元数据，再删用户，同一事务内完成
func (r *userRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM user_addresses WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user addresses: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM uploaded_files WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user files: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}

// CreateAddress 创建一个新地址。如果新地址是默认地址，
// 在同一事务内先取消该用户的其他默认地址再插入，任何时刻都不会出现两个默认地址
func (r *userRepository) CreateAddress(address *model.Address) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if address.IsDefault {
		if _, err := tx.Exec(`UPDATE user_addresses SET is_default = false WHERE user_id = ?`, address.UserID); err != nil {
			util.Logger.Error("取消默认地址失败",
				zap.Error(err),
				zap.Int("user_id", address.UserID))
			return fmt.Errorf("failed to unset default addresses: %w", err)
		}
	}

	query := `INSERT INTO user_addresses
              (user_id, street, city, state, postal_code, country, is_default)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.Exec(query,
		address.UserID, address.Street, address.City,
		address.State, address.PostalCode, address.Country, address.IsDefault)
	if err != nil {
		util.Logger.Error("执行SQL失败",
			zap.Error(err),
			zap.Int("user_id", address.UserID))
		return fmt.Errorf("failed to insert address: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	address.ID = int(id)
	util.Logger.Info("地址创建成功",
		zap.Int("address_id", address.ID),
		zap.Int("user_id", address.UserID))
	return nil
}

// UpdateAddress 更新地址信息，默认地址的清除规则与创建时相同
func (r *userRepository) UpdateAddress(address *model.Address) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if address.IsDefault {
		if _, err := tx.Exec(`UPDATE user_addresses SET is_default = false WHERE user_id = ? AND id != ?`,
			address.UserID, address.ID); err != nil {
			return fmt.Errorf("failed to unset default addresses: %w", err)
		}
	}

	query := `UPDATE user_addresses
              SET street = ?, city = ?, state = ?, postal_code = ?, country = ?, is_default = ?
              WHERE id = ? AND user_id = ?`
	result, err := tx.Exec(query,
		address.Street, address.City, address.State,
		address.PostalCode, address.Country, address.IsDefault,
		address.ID, address.UserID)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	return tx.Commit()
}

// DeleteAddress 删除地址，WHERE 条件带上 user_id 保证只能删除自己的地址
func (r *userRepository) DeleteAddress(userID, id int) error {
	query := `DELETE FROM user_addresses WHERE id = ? AND user_id = ?`
	_, err := r.db.Exec(query, id, userID)
	return err
}

// GetUserAddress 查找属于指定用户的地址，不存在或不属于该用户时返回 (nil, nil)
func (r *userRepository) GetUserAddress(userID, id int) (*model.Address, error) {
	var address model.Address
	query := `SELECT id, user_id, street, city, state, postal_code, country, is_default, created_at, updated_at
              FROM user_addresses WHERE id = ? AND user_id = ?`
	err := r.db.QueryRow(query, id, userID).Scan(
		&address.ID, &address.UserID, &address.Street,
		&address.City, &address.State, &address.PostalCode,
		&address.Country, &address.IsDefault,
		&address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// ListUserAddresses 返回用户的地址列表
func (r *userRepository) ListUserAddresses(userID int) ([]*model.Address, error) {
	query := `SELECT id, user_id, street, city, state, postal_code, country, is_default, created_at, updated_at
              FROM user_addresses
              WHERE user_id = ?
              ORDER BY is_default DESC, created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		util.Logger.Error("查询用户地址失败",
			zap.Error(err),
			zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*model.Address
	for rows.Next() {
		var address model.Address
		err := rows.Scan(
			&address.ID, &address.UserID, &address.Street,
			&address.City, &address.State, &address.PostalCode,
			&address.Country, &address.IsDefault,
			&address.CreatedAt, &address.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, &address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addresses: %w", err)
	}
	return addresses, nil
}
