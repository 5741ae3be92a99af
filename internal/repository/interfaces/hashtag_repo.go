package interfaces

import "microblog-backend/internal/model"

// HashtagRepository 接口定义了话题标签仓库应该实现的方法。
// 标签查找不区分大小写
type HashtagRepository interface {
	Create(hashtag *model.Hashtag) error
	FindByLabel(label string) (*model.Hashtag, error)
	TouchLastUsed(id int) error
	FindAll() ([]*model.Hashtag, error)
}
