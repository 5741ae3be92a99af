package user

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
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("handle", util.ValidateHandle)
	}
	os.Exit(m.Run())
}

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(user *model.User, password string) error {
	args := m.Called(user, password)
	return args.Error(0)
}

func (m *MockUserService) Login(username, password string) (*model.User, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetActiveUsers() ([]*model.User, error) {
	args := m.Called()
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(username string, authUserID int, update *model.User) (*model.User, error) {
	args := m.Called(username, authUserID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(username string, authUserID int) (*model.User, error) {
	args := m.Called(username, authUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Follow(username string, followerID int) error {
	args := m.Called(username, followerID)
	return args.Error(0)
}

func (m *MockUserService) Unfollow(username string, followerID int) error {
	args := m.Called(username, followerID)
	return args.Error(0)
}

func (m *MockUserService) GetFollowers(username string) ([]*model.User, error) {
	args := m.Called(username)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserService) GetFollowing(username string) ([]*model.User, error) {
	args := m.Called(username)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserService) GetUserTweets(username string) ([]*model.Tweet, error) {
	args := m.Called(username)
	return args.Get(0).([]*model.Tweet), args.Error(1)
}

func (m *MockUserService) GetMentions(username string) ([]*model.Tweet, error) {
	args := m.Called(username)
	return args.Get(0).([]*model.Tweet), args.Error(1)
}

func (m *MockUserService) GetFeed(username string) ([]*model.Tweet, error) {
	args := m.Called(username)
	return args.Get(0).([]*model.Tweet), args.Error(1)
}

func (m *MockUserService) Logout(userID int, token string) error {
	args := m.Called(userID, token)
	return args.Error(0)
}

func (m *MockUserService) IsTokenBlacklisted(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

// 确保 MockUserService 实现了 UserServiceInterface
var _ service.UserServiceInterface = (*MockUserService)(nil)

// TestRegisterHandler 测试注册处理器
func TestRegisterHandler(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)

	// 模拟成功注册
	mockService.On("Register", mock.AnythingOfType("*model.User"), "password123").Return(nil).Once()

	body := []byte(`{"username": "testuser", "password": "password123", "email": "test@example.com", "phone": "1234567890", "first_name": "Test", "last_name": "User"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)

	// 模拟注册失败（用户名已存在）
	mockService.On("Register", mock.AnythingOfType("*model.User"), "password123").Return(
		errors.New(errors.ErrUserExists, "用户名已存在")).Once()

	req, _ = http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	// 用户名带非法字符时在绑定阶段就被拒绝
	badBody := []byte(`{"username": "bad_user", "password": "password123", "email": "test@example.com", "phone": "1234567890", "first_name": "Test", "last_name": "User"}`)
	req, _ = http.NewRequest("POST", "/register", bytes.NewBuffer(badBody))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

// TestLoginHandler 测试登录处理器
func TestLoginHandler(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/login", handler.Login)

	// 模拟成功登录
	mockUser := &model.User{ID: 1, Username: "testuser"}
	mockService.On("Login", "testuser", "password123").Return(mockUser, nil)

	body := []byte(`{"username": "testuser", "password": "password123"}`)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data, ok := response["data"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, data, "token")
	mockService.AssertExpectations(t)

	// 模拟登录失败
	mockService.On("Login", "testuser", "wrongpassword").Return(nil,
		errors.New(errors.ErrInvalidCredentials, "用户名或密码错误"))

	body = []byte(`{"username": "testuser", "password": "wrongpassword"}`)
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}

// TestLogoutHandler 测试登出：拉黑的是请求实际携带的令牌
func TestLogoutHandler(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/logout", func(c *gin.Context) {
		c.Set("user_id", 1)
	}, handler.Logout)

	mockService.On("Logout", 1, "presented-token").Return(nil)

	req, _ := http.NewRequest("POST", "/logout", nil)
	req.Header.Set("Authorization", "Bearer presented-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	// 缺少令牌时拒绝
	req, _ = http.NewRequest("POST", "/logout", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRefreshTokenHandler 测试令牌刷新：带 Bearer 前缀的头也能正确解析
func TestRefreshTokenHandler(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/refresh-token", handler.RefreshToken)

	token, err := util.GenerateToken(1)
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/refresh-token", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data, ok := response["data"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, data, "token")

	// 缺少令牌时拒绝
	req, _ = http.NewRequest("POST", "/refresh-token", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
