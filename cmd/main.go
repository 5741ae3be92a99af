package main

import (
	"context"
	"database/sql"
	"fmt"
	"microblog-backend/config"
	"microblog-backend/internal/api/tag"
	"microblog-backend/internal/api/tweet"
	"microblog-backend/internal/api/user"
	"microblog-backend/internal/middleware"
	"microblog-backend/internal/repository/mysql"
	"microblog-backend/internal/service"
	"microblog-backend/internal/util"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	err = db.Ping()
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("handle", util.ValidateHandle)
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	tweetRepo := mysql.NewTweetRepository(db)
	hashtagRepo := mysql.NewHashtagRepository(db)

	hashtagService := service.NewHashtagService(hashtagRepo, tweetRepo)
	userService := service.NewUserService(userRepo, tweetRepo)
	tweetService := service.NewTweetService(tweetRepo, userRepo, hashtagService)

	authHandler := user.NewAuthHandler(userService)
	userHandler := user.NewUserHandler(userService)
	tweetHandler := tweet.NewTweetHandler(tweetService)
	tagHandler := tag.NewTagHandler(hashtagService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	r.Use(cors.New(corsConfig))

	auth := middleware.AuthMiddleware(userService)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", auth, authHandler.Logout)
		api.POST("/refresh-token", auth, authHandler.RefreshToken)

		// 用户相关路由
		api.GET("/users", userHandler.GetUsers)
		api.GET("/users/:username", userHandler.GetUser)
		api.PATCH("/users/:username", auth, userHandler.UpdateProfile)
		api.DELETE("/users/:username", auth, userHandler.DeleteUser)
		api.POST("/users/:username/follow", auth, userHandler.Follow)
		api.DELETE("/users/:username/follow", auth, userHandler.Unfollow)
		api.GET("/users/:username/followers", userHandler.GetFollowers)
		api.GET("/users/:username/following", userHandler.GetFollowing)
		api.GET("/users/:username/tweets", userHandler.GetUserTweets)
		api.GET("/users/:username/mentions", userHandler.GetMentions)
		api.GET("/users/:username/feed", userHandler.GetFeed)

		// 推文相关路由
		api.GET("/tweets", tweetHandler.GetAllTweets)
		api.POST("/tweets", auth, tweetHandler.CreateTweet)
		api.GET("/tweets/:id", tweetHandler.GetTweet)
		api.DELETE("/tweets/:id", auth, tweetHandler.DeleteTweet)
		api.POST("/tweets/:id/like", auth, tweetHandler.LikeTweet)
		api.POST("/tweets/:id/reply", auth, tweetHandler.ReplyToTweet)
		api.POST("/tweets/:id/repost", auth, tweetHandler.RepostTweet)
		api.GET("/tweets/:id/replies", tweetHandler.GetReplies)
		api.GET("/tweets/:id/reposts", tweetHandler.GetReposts)
		api.GET("/tweets/:id/mentions", tweetHandler.GetMentions)
		api.GET("/tweets/:id/likes", tweetHandler.GetLikers)
		api.GET("/tweets/:id/tags", tweetHandler.GetTags)
		api.GET("/tweets/:id/context", tweetHandler.GetContext)

		// 标签相关路由
		api.GET("/tags", tagHandler.GetTags)
		api.GET("/tags/:label", tagHandler.GetTweetsByTag)

		// 校验相关路由
		validate := api.Group("/validate")
		{
			validate.GET("/tag/exists/:label", tagHandler.TagExists)
			validate.GET("/username/exists/:username", userHandler.UsernameExists)
			validate.GET("/username/available/:username", userHandler.UsernameAvailable)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}
