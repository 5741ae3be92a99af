package tweet

import (
	"microblog-backend/internal/errors"
	"microblog-backend/internal/service"
	"microblog-backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TweetHandler 处理推文相关的HTTP请求
type TweetHandler struct {
	tweetService service.TweetServiceInterface
}

// NewTweetHandler 创建一个新的 TweetHandler 实例
func NewTweetHandler(tweetService service.TweetServiceInterface) *TweetHandler {
	return &TweetHandler{tweetService}
}

func tweetID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的推文ID", err))
		return 0, false
	}
	return id, true
}

// GetAllTweets 获取所有未删除的推文
func (h *TweetHandler) GetAllTweets(c *gin.Context) {
	tweets, err := h.tweetService.GetAllTweets()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取推文列表失败", err))
		return
	}
	errors.HandleSuccess(c, tweets, "")
}

// GetTweet 获取单条推文
func (h *TweetHandler) GetTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	tweet, err := h.tweetService.GetTweet(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, tweet, "")
}

// CreateTweet 创建推文
func (h *TweetHandler) CreateTweet(c *gin.Context) {
	var tweetData struct {
		Content string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&tweetData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	tweet, err := h.tweetService.CreateTweet(c.GetInt("user_id"), tweetData.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("推文发布成功",
		zap.Int("tweet_id", tweet.ID),
		zap.Int("author_id", tweet.AuthorID))
	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": tweet,
	})
}

// ReplyToTweet 回复推文
func (h *TweetHandler) ReplyToTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	var replyData struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&replyData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	reply, err := h.tweetService.ReplyToTweet(id, c.GetInt("user_id"), replyData.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": reply,
	})
}

// RepostTweet 转推
func (h *TweetHandler) RepostTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	repost, err := h.tweetService.RepostTweet(id, c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": repost,
	})
}

// DeleteTweet 删除推文（软删除）
func (h *TweetHandler) DeleteTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	tweet, err := h.tweetService.DeleteTweet(id, c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, tweet, "推文已删除")
}

// LikeTweet 点赞推文
func (h *TweetHandler) LikeTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}

	if err := h.tweetService.LikeTweet(id, c.GetInt("user_id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "点赞成功")
}

// GetReplies 获取推文的直接回复
func (h *TweetHandler) GetReplies(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	replies, err := h.tweetService.GetReplies(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, replies, "")
}

// GetReposts 获取推文的转推
func (h *TweetHandler) GetReposts(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	reposts, err := h.tweetService.GetReposts(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, reposts, "")
}

// GetMentions 获取推文中提及的用户
func (h *TweetHandler) GetMentions(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	users, err := h.tweetService.GetMentions(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, users, "")
}

// GetLikers 获取点赞用户
func (h *TweetHandler) GetLikers(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	users, err := h.tweetService.GetLikers(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, users, "")
}

// GetTags 获取推文的标签
func (h *TweetHandler) GetTags(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	tags, err := h.tweetService.GetTags(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, tags, "")
}

// GetContext 获取推文的会话上下文
func (h *TweetHandler) GetContext(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	context, err := h.tweetService.GetContext(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, context, "")
}
