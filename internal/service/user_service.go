package service

import (
	"microblog-backend/internal/errors"
	"microblog-backend/internal/model"
	"microblog-backend/internal/repository/interfaces"
	"microblog-backend/internal/util"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"golang.org/x/crypto/bcrypt"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo       interfaces.UserRepository
	tweetRepo      interfaces.TweetRepository
	emailService   *EmailService
	tokenBlacklist map[string]time.Time
	blacklistMutex sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, tweetRepo interfaces.TweetRepository) *UserService {
	return &UserService{
		userRepo:       userRepo,
		tweetRepo:      tweetRepo,
		emailService:   NewEmailService(),
		tokenBlacklist: make(map[string]time.Time),
	}
}

// Register 注册新用户。用户名只允许字母、数字和大括号，不区分大小写。
// 同一用户名加同一密码重新注册时恢复已软删除的账号
func (s *UserService) Register(user *model.User, password string) error {
	if !util.IsValidHandle(user.Username) {
		return errors.New(errors.ErrValidation, "用户名包含非法字符")
	}

	existing, err := s.userRepo.FindByUsername(user.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "用户名已存在")
	}

	// 检查是否为已注销账号的恢复
	removed, err := s.userRepo.FindDeletedByUsername(user.Username)
	if err != nil {
		return err
	}
	if removed != nil {
		if bcrypt.CompareHashAndPassword([]byte(removed.PasswordHash), []byte(password)) == nil {
			removed.Deleted = false
			if err := s.userRepo.Update(removed); err != nil {
				return err
			}
			util.Logger.Info("已恢复注销的账号", zap.Int("user_id", removed.ID))
			*user = *removed
			return nil
		}
		return errors.New(errors.ErrUserExists, "用户名已存在")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	s.emailService.SendWelcomeEmail(user.Email, user.Username)
	return nil
}

// Login 用户登录
func (s *UserService) Login(username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "用户名或密码错误")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.Logger.Warn("登录失败，密码不正确", zap.String("username", username))
		return nil, errors.New(errors.ErrInvalidCredentials, "用户名或密码错误")
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取未删除的用户
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Deleted {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// GetUser 通过用户名获取未删除的用户
func (s *UserService) GetUser(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// GetActiveUsers 获取所有未删除的用户
func (s *UserService) GetActiveUsers() ([]*model.User, error) {
	return s.userRepo.FindAllActive()
}

// UpdateProfile 更新用户资料。只有本人可以更新，空字段保持不变
func (s *UserService) UpdateProfile(username string, authUserID int, update *model.User) (*model.User, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	if user.ID != authUserID {
		return nil, errors.New(errors.ErrForbidden, "只能修改自己的资料")
	}

	if update.Email != "" {
		user.Email = update.Email
	}
	if update.Phone != "" {
		user.Phone = update.Phone
	}
	if update.FirstName != "" {
		user.FirstName = update.FirstName
	}
	if update.LastName != "" {
		user.LastName = update.LastName
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser 软删除账号。只有本人可以注销
func (s *UserService) DeleteUser(username string, authUserID int) (*model.User, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	if user.ID != authUserID {
		return nil, errors.New(errors.ErrForbidden, "只能注销自己的账号")
	}

	user.Deleted = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	util.Logger.Info("账号已注销", zap.Int("user_id", user.ID))
	return user, nil
}

// Follow 关注用户。重复关注返回 bad-request
func (s *UserService) Follow(username string, followerID int) error {
	target, err := s.GetUser(username)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return errors.New(errors.ErrBadRequest, "不能关注自己")
	}

	following, err := s.userRepo.IsFollowing(followerID, target.ID)
	if err != nil {
		return err
	}
	if following {
		return errors.New(errors.ErrAlreadyFollowing, "已经关注该用户")
	}

	return s.userRepo.CreateFollow(followerID, target.ID)
}

// Unfollow 取消关注。未关注时返回 bad-request
func (s *UserService) Unfollow(username string, followerID int) error {
	target, err := s.GetUser(username)
	if err != nil {
		return err
	}

	following, err := s.userRepo.IsFollowing(followerID, target.ID)
	if err != nil {
		return err
	}
	if !following {
		return errors.New(errors.ErrNotFollowing, "尚未关注该用户")
	}

	return s.userRepo.DeleteFollow(followerID, target.ID)
}

// GetFollowers 获取粉丝列表（未删除的）
func (s *UserService) GetFollowers(username string) ([]*model.User, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	return s.userRepo.FindFollowers(user.ID)
}

// GetFollowing 获取关注列表（未删除的）
func (s *UserService) GetFollowing(username string) ([]*model.User, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	return s.userRepo.FindFollowing(user.ID)
}

// GetUserTweets 获取用户的未删除推文，按时间倒序
func (s *UserService) GetUserTweets(username string) ([]*model.Tweet, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	return s.tweetRepo.FindActiveByAuthor(user.ID)
}

// GetMentions 获取提及该用户的未删除推文，按时间倒序
func (s *UserService) GetMentions(username string) ([]*model.Tweet, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	return s.tweetRepo.FindMentioningTweets(user.ID)
}

// GetFeed 组装用户的首页信息流：本人的推文，加上每个关注对象的推文、
// 对这些推文的一级回复和一级转推。聚合阶段只合并去重，
// 排序在合并完成后统一做一次，按发布时间倒序
func (s *UserService) GetFeed(username string) ([]*model.Tweet, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}

	var feed []*model.Tweet
	seen := make(map[int]bool)
	merge := func(tweets []*model.Tweet) {
		for _, t := range tweets {
			if t.Deleted || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			feed = append(feed, t)
		}
	}

	own, err := s.tweetRepo.FindActiveByAuthor(user.ID)
	if err != nil {
		return nil, err
	}
	merge(own)

	following, err := s.userRepo.FindFollowing(user.ID)
	if err != nil {
		return nil, err
	}
	for _, followed := range following {
		tweets, err := s.tweetRepo.FindActiveByAuthor(followed.ID)
		if err != nil {
			return nil, err
		}
		merge(tweets)

		for _, tweet := range tweets {
			replies, err := s.tweetRepo.FindReplies(tweet.ID)
			if err != nil {
				return nil, err
			}
			merge(replies)

			reposts, err := s.tweetRepo.FindReposts(tweet.ID)
			if err != nil {
				return nil, err
			}
			merge(reposts)
		}
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].Posted.After(feed[j].Posted)
	})
	return feed, nil
}

// Logout 注销登录，把请求实际携带的令牌加入黑名单
func (s *UserService) Logout(userID int, token string) error {
	s.blacklistMutex.Lock()
	s.tokenBlacklist[token] = time.Now().Add(24 * time.Hour) // 令牌在黑名单中保留24小时
	s.blacklistMutex.Unlock()
	util.Logger.Info("用户登出，令牌已加入黑名单", zap.Int("user_id", userID))
	return nil
}

func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.RLock()
	defer s.blacklistMutex.RUnlock()
	expiry, exists := s.tokenBlacklist[token]
	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		return false
	}
	return true
}

// UserServiceInterface 供处理器层依赖
type UserServiceInterface interface {
	Register(user *model.User, password string) error
	Login(username, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	GetUser(username string) (*model.User, error)
	GetActiveUsers() ([]*model.User, error)
	UpdateProfile(username string, authUserID int, update *model.User) (*model.User, error)
	DeleteUser(username string, authUserID int) (*model.User, error)
	Follow(username string, followerID int) error
	Unfollow(username string, followerID int) error
	GetFollowers(username string) ([]*model.User, error)
	GetFollowing(username string) ([]*model.User, error)
	GetUserTweets(username string) ([]*model.Tweet, error)
	GetMentions(username string) ([]*model.Tweet, error)
	GetFeed(username string) ([]*model.Tweet, error)
	Logout(userID int, token string) error
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
