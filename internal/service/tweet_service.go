package service

import (
	"microblog-backend/internal/errors"
	"microblog-backend/internal/model"
	"microblog-backend/internal/repository/interfaces"
	"microblog-backend/internal/util"
	"strings"

	"go.uber.org/zap"
)

// TweetService 处理推文的创建、回复/转推关联和会话上下文查询
type TweetService struct {
	tweetRepo interfaces.TweetRepository
	userRepo  interfaces.UserRepository
	hashtags  *HashtagService
}

// NewTweetService 创建一个新的 TweetService 实例
func NewTweetService(tweetRepo interfaces.TweetRepository, userRepo interfaces.UserRepository, hashtags *HashtagService) *TweetService {
	return &TweetService{
		tweetRepo: tweetRepo,
		userRepo:  userRepo,
		hashtags:  hashtags,
	}
}

// CreateTweet 创建原创推文并解析正文中的提及和标签。实体先解析，
// 推文行与关联在同一事务写入，失败时不留下任何推文数据
func (s *TweetService) CreateTweet(authorID int, content string) (*model.Tweet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.ErrValidation, "推文内容不能为空")
	}

	author, err := s.activeUser(authorID)
	if err != nil {
		return nil, err
	}

	hashtagIDs, mentionUserIDs, err := s.resolveEntities(content)
	if err != nil {
		return nil, err
	}

	tweet := &model.Tweet{
		AuthorID: author.ID,
		Content:  content,
	}
	if err := s.tweetRepo.CreateWithEntities(tweet, hashtagIDs, mentionUserIDs); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建推文失败", err)
	}
	tweet.Author = author
	return tweet, nil
}

// ReplyToTweet 创建对已有推文的回复。in_reply_to 在创建时写入，之后不再变更
func (s *TweetService) ReplyToTweet(parentID, authorID int, content string) (*model.Tweet, error) {
	parent, err := s.tweetRepo.FindActiveByID(parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, errors.New(errors.ErrTweetNotFound, "推文不存在")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.ErrValidation, "回复内容不能为空")
	}

	author, err := s.activeUser(authorID)
	if err != nil {
		return nil, err
	}

	hashtagIDs, mentionUserIDs, err := s.resolveEntities(content)
	if err != nil {
		return nil, err
	}

	reply := &model.Tweet{
		AuthorID:    author.ID,
		Content:     content,
		InReplyToID: &parent.ID,
	}
	if err := s.tweetRepo.CreateWithEntities(reply, hashtagIDs, mentionUserIDs); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建回复失败", err)
	}
	reply.Author = author
	return reply, nil
}

// RepostTweet 转推。转推没有独立内容，只有作者
func (s *TweetService) RepostTweet(originalID, authorID int) (*model.Tweet, error) {
	original, err := s.tweetRepo.FindActiveByID(originalID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, errors.New(errors.ErrTweetNotFound, "推文不存在")
	}

	author, err := s.activeUser(authorID)
	if err != nil {
		return nil, err
	}

	repost := &model.Tweet{
		AuthorID:   author.ID,
		RepostOfID: &original.ID,
	}
	if err := s.tweetRepo.Create(repost); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建转推失败", err)
	}
	repost.Author = author
	return repost, nil
}

// DeleteTweet 软删除推文。只有作者本人可以删除；关联边保留，
// 未删除的子回复依然可以被遍历到
func (s *TweetService) DeleteTweet(id, authorID int) (*model.Tweet, error) {
	tweet, err := s.tweetRepo.FindActiveByID(id)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, errors.New(errors.ErrTweetNotFound, "推文不存在")
	}
	if tweet.AuthorID != authorID {
		return nil, errors.New(errors.ErrForbidden, "只能删除自己的推文")
	}

	if err := s.tweetRepo.MarkDeleted(id); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "删除推文失败", err)
	}
	tweet.Deleted = true
	return tweet, nil
}

// LikeTweet 点赞。操作幂等，重复点赞不报错
func (s *TweetService) LikeTweet(id, userID int) error {
	tweet, err := s.tweetRepo.FindActiveByID(id)
	if err != nil {
		return err
	}
	if tweet == nil {
		return errors.New(errors.ErrTweetNotFound, "推文不存在")
	}
	if _, err := s.activeUser(userID); err != nil {
		return err
	}
	return s.tweetRepo.CreateLike(userID, id)
}

// GetTweet 获取单条未删除的推文
func (s *TweetService) GetTweet(id int) (*model.Tweet, error) {
	tweet, err := s.tweetRepo.FindActiveByID(id)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, errors.New(errors.ErrTweetNotFound, "推文不存在")
	}
	return tweet, nil
}

// GetAllTweets 获取所有未删除的推文，按时间倒序
func (s *TweetService) GetAllTweets() ([]*model.Tweet, error) {
	return s.tweetRepo.FindAllActive()
}

// GetReplies 获取直接回复（未删除的）
func (s *TweetService) GetReplies(id int) ([]*model.Tweet, error) {
	if _, err := s.GetTweet(id); err != nil {
		return nil, err
	}
	replies, err := s.tweetRepo.FindReplies(id)
	if err != nil {
		return nil, err
	}
	return filterDeleted(replies), nil
}

// GetReposts 获取直接转推（未删除的）
func (s *TweetService) GetReposts(id int) ([]*model.Tweet, error) {
	if _, err := s.GetTweet(id); err != nil {
		return nil, err
	}
	reposts, err := s.tweetRepo.FindReposts(id)
	if err != nil {
		return nil, err
	}
	return filterDeleted(reposts), nil
}

// GetMentions 获取推文中提及的用户
func (s *TweetService) GetMentions(id int) ([]*model.User, error) {
	if _, err := s.GetTweet(id); err != nil {
		return nil, err
	}
	return s.tweetRepo.FindMentionedUsers(id)
}

// GetLikers 获取点赞用户
func (s *TweetService) GetLikers(id int) ([]*model.User, error) {
	if _, err := s.GetTweet(id); err != nil {
		return nil, err
	}
	return s.tweetRepo.FindLikers(id)
}

// GetTags 获取推文的标签，label 去掉 "#" 前缀后返回
func (s *TweetService) GetTags(id int) ([]*model.Hashtag, error) {
	if _, err := s.GetTweet(id); err != nil {
		return nil, err
	}
	tags, err := s.tweetRepo.FindHashtags(id)
	if err != nil {
		return nil, err
	}
	stripLabels(tags)
	return tags, nil
}

// GetContext 获取推文的会话上下文：目标推文、祖先链（最近的在前）
// 和层序排列的后代回复
func (s *TweetService) GetContext(id int) (*model.TweetContext, error) {
	target, err := s.tweetRepo.FindActiveByID(id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.New(errors.ErrTweetNotFound, "推文不存在")
	}

	before, err := s.ancestorsOf(target)
	if err != nil {
		return nil, err
	}
	after, err := s.descendantsOf(target)
	if err != nil {
		return nil, err
	}

	return &model.TweetContext{
		Target: target,
		Before: before,
		After:  after,
	}, nil
}

// ancestorsOf 沿 in_reply_to 向上走到根。已删除的祖先和作者无法解析的
// 祖先不进入结果，但遍历不会因此中断
func (s *TweetService) ancestorsOf(target *model.Tweet) ([]*model.Tweet, error) {
	var before []*model.Tweet
	current := target
	for current.InReplyToID != nil {
		parent, err := s.tweetRepo.FindByID(*current.InReplyToID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		if !parent.Deleted && parent.Author != nil && !parent.Author.Deleted {
			before = append(before, parent)
		}
		current = parent
	}
	return before, nil
}

// descendantsOf 从直接回复开始做层序遍历。已删除的推文不进入结果，
// 但其子回复仍会被继续遍历；visited 集合保证脏数据成环时遍历也能终止
func (s *TweetService) descendantsOf(target *model.Tweet) ([]*model.Tweet, error) {
	queue, err := s.tweetRepo.FindReplies(target.ID)
	if err != nil {
		return nil, err
	}

	var after []*model.Tweet
	visited := map[int]bool{target.ID: true}
	for len(queue) > 0 {
		tweet := queue[0]
		queue = queue[1:]
		if visited[tweet.ID] {
			continue
		}
		visited[tweet.ID] = true

		if !tweet.Deleted && tweet.Author != nil && !tweet.Author.Deleted {
			after = append(after, tweet)
		}

		children, err := s.tweetRepo.FindReplies(tweet.ID)
		if err != nil {
			return nil, err
		}
		queue = append(queue, children...)
	}
	return after, nil
}

// resolveEntities 解析正文并准备实体关联：标签在注册表里落定（去重、
// 推进 last_used），提及候选解析为用户，匹配不到用户的候选静默丢弃。
// 返回的ID列表与推文行在同一事务里写入
func (s *TweetService) resolveEntities(content string) ([]int, []int, error) {
	mentions, hashtags := parseContent(content)

	var hashtagIDs []int
	for _, label := range hashtags {
		tag, err := s.hashtags.ResolveOrCreate(label)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrDatabase, "解析标签失败", err)
		}
		hashtagIDs = append(hashtagIDs, tag.ID)
	}

	var mentionUserIDs []int
	for _, username := range mentions {
		user, err := s.userRepo.FindByUsername(username)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrDatabase, "解析提及失败", err)
		}
		if user == nil {
			continue
		}
		mentionUserIDs = append(mentionUserIDs, user.ID)
	}

	util.Logger.Debug("推文内容解析完成",
		zap.Int("mention_count", len(mentionUserIDs)),
		zap.Int("hashtag_count", len(hashtagIDs)))
	return hashtagIDs, mentionUserIDs, nil
}

func (s *TweetService) activeUser(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Deleted {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

func filterDeleted(tweets []*model.Tweet) []*model.Tweet {
	var active []*model.Tweet
	for _, t := range tweets {
		if !t.Deleted {
			active = append(active, t)
		}
	}
	return active
}

// TweetServiceInterface 供处理器层依赖
type TweetServiceInterface interface {
	CreateTweet(authorID int, content string) (*model.Tweet, error)
	ReplyToTweet(parentID, authorID int, content string) (*model.Tweet, error)
	RepostTweet(originalID, authorID int) (*model.Tweet, error)
	DeleteTweet(id, authorID int) (*model.Tweet, error)
	LikeTweet(id, userID int) error
	GetTweet(id int) (*model.Tweet, error)
	GetAllTweets() ([]*model.Tweet, error)
	GetReplies(id int) ([]*model.Tweet, error)
	GetReposts(id int) ([]*model.Tweet, error)
	GetMentions(id int) ([]*model.User, error)
	GetLikers(id int) ([]*model.User, error)
	GetTags(id int) ([]*model.Hashtag, error)
	GetContext(id int) (*model.TweetContext, error)
}

// 确保 TweetService 实现了 TweetServiceInterface
var _ TweetServiceInterface = (*TweetService)(nil)
