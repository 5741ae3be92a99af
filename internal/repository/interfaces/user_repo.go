package interfaces

import "microblog-backend/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindDeletedByUsername(username string) (*model.User, error)
	Update(user *model.User) error
	FindAllActive() ([]*model.User, error)
	CreateFollow(followerID, followedID int) error
	DeleteFollow(followerID, followedID int) error
	IsFollowing(followerID, followedID int) (bool, error)
	FindFollowers(userID int) ([]*model.User, error)
	FindFollowing(userID int) ([]*model.User, error)
}
