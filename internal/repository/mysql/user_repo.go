package mysql

import (
	"database/sql"
	"microblog-backend/internal/model"
	"microblog-backend/internal/util"
	"time"

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

const userColumns = `id, username, password_hash, email, phone, first_name, last_name, deleted, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Phone,
		&user.FirstName, &user.LastName, &user.Deleted, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (username, password_hash, email, phone, first_name, last_name, deleted)
              VALUES (?, ?, ?, ?, ?, ?, FALSE)`
	result, err := r.db.Exec(query, user.Username, user.PasswordHash, user.Email, user.Phone, user.FirstName, user.LastName)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("username", user.Username))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新用户ID失败", zap.Error(err))
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户（包含已删除的）
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindByUsername 通过用户名查找未删除的用户，用户名不区分大小写
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? AND deleted = FALSE`
	user, err := scanUser(r.db.QueryRow(query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindDeletedByUsername 通过用户名查找已软删除的用户，用于账号恢复
func (r *userRepository) FindDeletedByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? AND deleted = TRUE`
	user, err := scanUser(r.db.QueryRow(query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Update 更新用户信息（包括软删除标记）
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET email = ?, phone = ?, first_name = ?, last_name = ?, password_hash = ?, deleted = ?, updated_at = ?
		WHERE id = ?`,
		user.Email, user.Phone, user.FirstName, user.LastName, user.PasswordHash, user.Deleted, time.Now(), user.ID)
	if err != nil {
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
	}
	return err
}

// FindAllActive 获取所有未删除的用户
func (r *userRepository) FindAllActive() ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted = FALSE ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateFollow 创建关注关系，重复关注不报错
func (r *userRepository) CreateFollow(followerID, followedID int) error {
	util.Logger.Info("开始创建关注", zap.Int("follower_id", followerID), zap.Int("followed_id", followedID))

	query := `INSERT IGNORE INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, NOW())`
	_, err := r.db.Exec(query, followerID, followedID)
	if err != nil {
		util.Logger.Error("创建关注失败", zap.Error(err))
		return err
	}
	return nil
}

// DeleteFollow 删除关注关系
func (r *userRepository) DeleteFollow(followerID, followedID int) error {
	query := `DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`
	_, err := r.db.Exec(query, followerID, followedID)
	if err != nil {
		util.Logger.Error("删除关注失败", zap.Error(err))
		return err
	}
	return nil
}

func (r *userRepository) IsFollowing(followerID, followedID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM follows
            WHERE follower_id = ? AND followed_id = ?
        )
    `, followerID, followedID).Scan(&exists)
	return exists, err
}

// FindFollowers 获取未删除的粉丝列表
func (r *userRepository) FindFollowers(userID int) ([]*model.User, error) {
	query := `
        SELECT ` + prefixedUserColumns("u") + `
        FROM users u
        JOIN follows f ON u.id = f.follower_id
        WHERE f.followed_id = ? AND u.deleted = FALSE
        ORDER BY f.created_at DESC`
	return r.queryUsers(query, userID)
}

// FindFollowing 获取未删除的关注列表
func (r *userRepository) FindFollowing(userID int) ([]*model.User, error) {
	query := `
        SELECT ` + prefixedUserColumns("u") + `
        FROM users u
        JOIN follows f ON u.id = f.followed_id
        WHERE f.follower_id = ? AND u.deleted = FALSE
        ORDER BY f.created_at DESC`
	return r.queryUsers(query, userID)
}

func (r *userRepository) queryUsers(query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func prefixedUserColumns(alias string) string {
	return alias + `.id, ` + alias + `.username, ` + alias + `.password_hash, ` + alias + `.email, ` +
		alias + `.phone, ` + alias + `.first_name, ` + alias + `.last_name, ` + alias + `.deleted, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
