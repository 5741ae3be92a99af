package tag

import (
	"microblog-backend/internal/errors"
	"microblog-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TagHandler 处理话题标签相关的HTTP请求
type TagHandler struct {
	hashtagService service.HashtagServiceInterface
}

// NewTagHandler 创建一个新的 TagHandler 实例
func NewTagHandler(hashtagService service.HashtagServiceInterface) *TagHandler {
	return &TagHandler{hashtagService}
}

// GetTags 获取所有标签
func (h *TagHandler) GetTags(c *gin.Context) {
	tags, err := h.hashtagService.GetAllTags()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取标签列表失败", err))
		return
	}
	errors.HandleSuccess(c, tags, "")
}

// GetTweetsByTag 获取带某标签的推文
func (h *TagHandler) GetTweetsByTag(c *gin.Context) {
	tweets, err := h.hashtagService.GetTweetsByLabel(c.Param("label"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, tweets, "")
}

// TagExists 检查标签是否存在
func (h *TagHandler) TagExists(c *gin.Context) {
	exists, err := h.hashtagService.TagExists(c.Param("label"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"exists": exists}, "")
}
