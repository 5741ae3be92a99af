package tweet

import (
	"bytes"
	"encoding/json"
	"microblog-backend/internal/errors"
	"microblog-backend/internal/model"
	"microblog-backend/internal/service"
	"microblog-backend/internal/util"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	os.Exit(m.Run())
}

// MockTweetService 是 TweetServiceInterface 的模拟实现
type MockTweetService struct {
	mock.Mock
}

func (m *MockTweetService) CreateTweet(authorID int, content string) (*model.Tweet, error) {
	args := m.Called(authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tweet), args.Error(1)
}

func (m *MockTweetService) ReplyToTweet(parentID, authorID int, content string) (*model.Tweet, error) {
	args := m.Called(parentID, authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tweet), args.Error(1)
}

func (m *MockTweetService) RepostTweet(originalID, authorID int) (*model.Tweet, error) {
	args := m.Called(originalID, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tweet), args.Error(1)
}

func (m *MockTweetService) DeleteTweet(id, authorID int) (*model.Tweet, error) {
	args := m.Called(id, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tweet), args.Error(1)
}

func (m *MockTweetService) LikeTweet(id, userID int) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func (m *MockTweetService) GetTweet(id int) (*model.Tweet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tweet), args.Error(1)
}

func (m *MockTweetService) GetAllTweets() ([]*model.Tweet, error) {
	args := m.Called()
	return args.Get(0).([]*model.Tweet), args.Error(1)
}

func (m *MockTweetService) GetReplies(id int) ([]*model.Tweet, error) {
	args := m.Called(id)
	return args.Get(0).([]*model.Tweet), args.Error(1)
}

func (m *MockTweetService) GetReposts(id int) ([]*model.Tweet, error) {
	args := m.Called(id)
	return args.Get(0).([]*model.Tweet), args.Error(1)
}

func (m *MockTweetService) GetMentions(id int) ([]*model.User, error) {
	args := m.Called(id)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockTweetService) GetLikers(id int) ([]*model.User, error) {
	args := m.Called(id)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockTweetService) GetTags(id int) ([]*model.Hashtag, error) {
	args := m.Called(id)
	return args.Get(0).([]*model.Hashtag), args.Error(1)
}

func (m *MockTweetService) GetContext(id int) (*model.TweetContext, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TweetContext), args.Error(1)
}

// 确保 MockTweetService 实现了 TweetServiceInterface
var _ service.TweetServiceInterface = (*MockTweetService)(nil)

// 模拟认证中间件注入的用户ID
func withUserID(userID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

// TestCreateTweetHandler 测试发推处理器
func TestCreateTweetHandler(t *testing.T) {
	mockService := new(MockTweetService)
	handler := NewTweetHandler(mockService)

	router := gin.New()
	router.POST("/tweets", withUserID(1), handler.CreateTweet)

	mockService.On("CreateTweet", 1, "hello #go").Return(&model.Tweet{ID: 10, AuthorID: 1, Content: "hello #go"}, nil)

	body := []byte(`{"content": "hello #go"}`)
	req, _ := http.NewRequest("POST", "/tweets", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)

	// 测试缺失正文
	req, _ = http.NewRequest("POST", "/tweets", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestGetTweetHandler 测试获取单条推文
func TestGetTweetHandler(t *testing.T) {
	mockService := new(MockTweetService)
	handler := NewTweetHandler(mockService)

	router := gin.New()
	router.GET("/tweets/:id", handler.GetTweet)

	mockService.On("GetTweet", 10).Return(&model.Tweet{ID: 10}, nil)

	req, _ := http.NewRequest("GET", "/tweets/10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// 测试推文不存在
	mockService.On("GetTweet", 99).Return(nil, errors.New(errors.ErrTweetNotFound, "推文不存在"))

	req, _ = http.NewRequest("GET", "/tweets/99", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// 测试非数字ID
	req, _ = http.NewRequest("GET", "/tweets/abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestDeleteTweetHandler 测试删除推文，非作者返回 403
func TestDeleteTweetHandler(t *testing.T) {
	mockService := new(MockTweetService)
	handler := NewTweetHandler(mockService)

	router := gin.New()
	router.DELETE("/tweets/:id", withUserID(2), handler.DeleteTweet)

	mockService.On("DeleteTweet", 10, 2).Return(nil, errors.New(errors.ErrForbidden, "只能删除自己的推文"))

	req, _ := http.NewRequest("DELETE", "/tweets/10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

// TestGetContextHandler 测试会话上下文响应结构
func TestGetContextHandler(t *testing.T) {
	mockService := new(MockTweetService)
	handler := NewTweetHandler(mockService)

	router := gin.New()
	router.GET("/tweets/:id/context", handler.GetContext)

	target := &model.Tweet{ID: 3}
	mockService.On("GetContext", 3).Return(&model.TweetContext{
		Target: target,
		Before: []*model.Tweet{{ID: 1}},
		After:  []*model.Tweet{{ID: 4}},
	}, nil)

	req, _ := http.NewRequest("GET", "/tweets/3/context", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data, ok := response["data"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, data, "target")
	assert.Contains(t, data, "before")
	assert.Contains(t, data, "after")
}
