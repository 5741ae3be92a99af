package interfaces

import "microblog-backend/internal/model"

// TweetRepository 接口定义了推文仓库应该实现的方法。
// CreateWithEntities 在单个事务中写入推文行及其标签/提及关联，
// 整体成功或整体失败。FindReplies / FindReposts 返回的是直接子推文
// （含已删除的），由服务层决定遍历和过滤策略
type TweetRepository interface {
	Create(tweet *model.Tweet) error
	CreateWithEntities(tweet *model.Tweet, hashtagIDs, mentionUserIDs []int) error
	FindByID(id int) (*model.Tweet, error)
	FindActiveByID(id int) (*model.Tweet, error)
	MarkDeleted(id int) error
	FindAllActive() ([]*model.Tweet, error)
	FindActiveByAuthor(userID int) ([]*model.Tweet, error)
	FindReplies(tweetID int) ([]*model.Tweet, error)
	FindReposts(tweetID int) ([]*model.Tweet, error)
	CreateLike(userID, tweetID int) error
	FindLikers(tweetID int) ([]*model.User, error)
	FindMentionedUsers(tweetID int) ([]*model.User, error)
	FindMentioningTweets(userID int) ([]*model.Tweet, error)
	FindHashtags(tweetID int) ([]*model.Hashtag, error)
	FindActiveByHashtag(hashtagID int) ([]*model.Tweet, error)
}
