package mysql

import (
	"database/sql"
	"microblog-backend/internal/model"
	"microblog-backend/internal/util"

	"go.uber.org/zap"
)

// hashtagRepository 实现了 HashtagRepository 接口
type hashtagRepository struct {
	db *sql.DB
}

// NewHashtagRepository 创建一个新的 hashtagRepository 实例
func NewHashtagRepository(db *sql.DB) *hashtagRepository {
	return &hashtagRepository{db}
}

// Create 创建标签，first_used 和 last_used 均为当前时间
func (r *hashtagRepository) Create(hashtag *model.Hashtag) error {
	query := `INSERT INTO hashtags (label, first_used, last_used) VALUES (?, NOW(), NOW())`
	result, err := r.db.Exec(query, hashtag.Label)
	if err != nil {
		util.Logger.Error("创建标签失败", zap.Error(err), zap.String("label", hashtag.Label))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	hashtag.ID = int(id)

	err = r.db.QueryRow(`SELECT first_used, last_used FROM hashtags WHERE id = ?`, hashtag.ID).
		Scan(&hashtag.FirstUsed, &hashtag.LastUsed)
	if err != nil {
		return err
	}

	util.Logger.Info("标签创建成功", zap.Int("hashtag_id", hashtag.ID), zap.String("label", hashtag.Label))
	return nil
}

// FindByLabel 查找标签，不区分大小写："#Go" 和 "#go" 命中同一条记录，
// 保存的是首次出现的写法。比较不依赖列的排序规则
func (r *hashtagRepository) FindByLabel(label string) (*model.Hashtag, error) {
	query := `SELECT id, label, first_used, last_used FROM hashtags WHERE LOWER(label) = LOWER(?)`
	var tag model.Hashtag
	err := r.db.QueryRow(query, label).Scan(&tag.ID, &tag.Label, &tag.FirstUsed, &tag.LastUsed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// TouchLastUsed 更新标签的最近使用时间，first_used 保持不变
func (r *hashtagRepository) TouchLastUsed(id int) error {
	_, err := r.db.Exec(`UPDATE hashtags SET last_used = NOW() WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("更新标签使用时间失败", zap.Error(err), zap.Int("hashtag_id", id))
	}
	return err
}

// FindAll 获取所有标签，按最近使用时间倒序
func (r *hashtagRepository) FindAll() ([]*model.Hashtag, error) {
	query := `SELECT id, label, first_used, last_used FROM hashtags ORDER BY last_used DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*model.Hashtag
	for rows.Next() {
		var tag model.Hashtag
		if err := rows.Scan(&tag.ID, &tag.Label, &tag.FirstUsed, &tag.LastUsed); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}
