package user

import (
	"microblog-backend/internal/errors"
	"microblog-backend/internal/model"
	"microblog-backend/internal/service"
	"microblog-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 处理用户资源相关的HTTP请求
type UserHandler struct {
	userService service.UserServiceInterface
}

// NewUserHandler 创建一个新的 UserHandler 实例
func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{userService}
}

// GetUsers 获取所有未删除的用户
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetActiveUsers()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户列表失败", err))
		return
	}
	errors.HandleSuccess(c, users, "")
}

// GetUser 获取单个用户
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, user, "")
}

// UpdateProfile 更新用户资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var profileData struct {
		Email     string `json:"email" binding:"omitempty,email"`
		Phone     string `json:"phone"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.ShouldBindJSON(&profileData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	update := &model.User{
		Email:     profileData.Email,
		Phone:     profileData.Phone,
		FirstName: profileData.FirstName,
		LastName:  profileData.LastName,
	}

	user, err := h.userService.UpdateProfile(c.Param("username"), c.GetInt("user_id"), update)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, user, "资料更新成功")
}

// DeleteUser 注销账号（软删除）
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, err := h.userService.DeleteUser(c.Param("username"), c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, user, "账号已注销")
}

// Follow 关注用户
func (h *UserHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	if err := h.userService.Follow(username, c.GetInt("user_id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	util.Logger.Info("关注成功",
		zap.Int("follower_id", c.GetInt("user_id")),
		zap.String("username", username))
	errors.HandleSuccess(c, nil, "关注成功")
}

// Unfollow 取消关注
func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.userService.Unfollow(c.Param("username"), c.GetInt("user_id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "已取消关注")
}

// GetFollowers 获取粉丝列表
func (h *UserHandler) GetFollowers(c *gin.Context) {
	followers, err := h.userService.GetFollowers(c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, followers, "")
}

// GetFollowing 获取关注列表
func (h *UserHandler) GetFollowing(c *gin.Context) {
	following, err := h.userService.GetFollowing(c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, following, "")
}

// GetUserTweets 获取用户发布的推文
func (h *UserHandler) GetUserTweets(c *gin.Context) {
	tweets, err := h.userService.GetUserTweets(c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, tweets, "")
}

// GetMentions 获取提及该用户的推文
func (h *UserHandler) GetMentions(c *gin.Context) {
	tweets, err := h.userService.GetMentions(c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, tweets, "")
}

// GetFeed 获取用户的首页信息流
func (h *UserHandler) GetFeed(c *gin.Context) {
	feed, err := h.userService.GetFeed(c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, feed, "")
}

// UsernameExists 检查用户名对应的用户是否存在
func (h *UserHandler) UsernameExists(c *gin.Context) {
	_, err := h.userService.GetUser(c.Param("username"))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrUserNotFound {
			errors.HandleSuccess(c, gin.H{"exists": false}, "")
			return
		}
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"exists": true}, "")
}

// UsernameAvailable 检查用户名是否可用
func (h *UserHandler) UsernameAvailable(c *gin.Context) {
	username := c.Param("username")
	if !util.IsValidHandle(username) {
		errors.HandleSuccess(c, gin.H{"available": false}, "")
		return
	}
	_, err := h.userService.GetUser(username)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrUserNotFound {
			errors.HandleSuccess(c, gin.H{"available": true}, "")
			return
		}
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"available": false}, "")
}
