package service

import (
	"microblog-backend/internal/errors"
	"microblog-backend/internal/model"
	"microblog-backend/internal/repository/interfaces"
	"strings"
)

// HashtagService 维护话题标签的去重与使用时间
type HashtagService struct {
	hashtagRepo interfaces.HashtagRepository
	tweetRepo   interfaces.TweetRepository
}

// NewHashtagService 创建一个新的 HashtagService 实例
func NewHashtagService(hashtagRepo interfaces.HashtagRepository, tweetRepo interfaces.TweetRepository) *HashtagService {
	return &HashtagService{hashtagRepo: hashtagRepo, tweetRepo: tweetRepo}
}

// ResolveOrCreate 按标签文本查找或创建标签。已存在时只更新 last_used，
// first_used 一经写入不再变更
func (s *HashtagService) ResolveOrCreate(label string) (*model.Hashtag, error) {
	tag, err := s.hashtagRepo.FindByLabel(label)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		if err := s.hashtagRepo.TouchLastUsed(tag.ID); err != nil {
			return nil, err
		}
		return tag, nil
	}

	tag = &model.Hashtag{Label: label}
	if err := s.hashtagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// GetAllTags 获取所有标签，label 去掉 "#" 前缀后返回
func (s *HashtagService) GetAllTags() ([]*model.Hashtag, error) {
	tags, err := s.hashtagRepo.FindAll()
	if err != nil {
		return nil, err
	}
	stripLabels(tags)
	return tags, nil
}

// GetTweetsByLabel 获取带某标签的未删除推文，标签不存在时返回 not-found
func (s *HashtagService) GetTweetsByLabel(label string) ([]*model.Tweet, error) {
	tag, err := s.hashtagRepo.FindByLabel(normalizeLabel(label))
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, errors.New(errors.ErrTagNotFound, "标签不存在")
	}
	return s.tweetRepo.FindActiveByHashtag(tag.ID)
}

// TagExists 判断标签是否存在
func (s *HashtagService) TagExists(label string) (bool, error) {
	tag, err := s.hashtagRepo.FindByLabel(normalizeLabel(label))
	if err != nil {
		return false, err
	}
	return tag != nil, nil
}

// normalizeLabel 补齐存储用的 "#" 前缀，路由参数里通常不带前缀
func normalizeLabel(label string) string {
	if strings.HasPrefix(label, "#") {
		return label
	}
	return "#" + label
}

func stripLabels(tags []*model.Hashtag) {
	for _, tag := range tags {
		tag.Label = strings.TrimPrefix(tag.Label, "#")
	}
}

// HashtagServiceInterface 供处理器层依赖
type HashtagServiceInterface interface {
	ResolveOrCreate(label string) (*model.Hashtag, error)
	GetAllTags() ([]*model.Hashtag, error)
	GetTweetsByLabel(label string) ([]*model.Tweet, error)
	TagExists(label string) (bool, error)
}

// 确保 HashtagService 实现了 HashtagServiceInterface
var _ HashtagServiceInterface = (*HashtagService)(nil)
