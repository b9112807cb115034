package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MadhusudanDhakad/file-management-app/config"
	"github.com/MadhusudanDhakad/file-management-app/internal/api/dashboard"
	"github.com/MadhusudanDhakad/file-management-app/internal/api/file"
	"github.com/MadhusudanDhakad/file-management-app/internal/api/user"
	"github.com/MadhusudanDhakad/file-management-app/internal/common"
	"github.com/MadhusudanDhakad/file-management-app/internal/middleware"
	"github.com/MadhusudanDhakad/file-management-app/internal/repository/mysql"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"
	"github.com/MadhusudanDhakad/file-management-app/internal/storage"
	"github.com/MadhusudanDhakad/file-management-app/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
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

	// 测试数据库连接，启动阶段允许重试
	if err := common.WithRetry(db.Ping, 3); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("phone", util.ValidatePhoneNumber)
	}

	// 初始化 Blob 存储后端
	blobStorage, err := newStorage()
	if err != nil {
		util.Logger.Fatal("初始化存储后端失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	fileRepo := mysql.NewFileRepository(db)

	userService := service.NewUserService(userRepo)
	fileService := service.NewFileService(fileRepo, blobStorage)
	statsService := service.NewStatsService(fileRepo)

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService)
	addressHandler := user.NewAddressHandler(userService)
	fileHandler := file.NewFileHandler(fileService)
	dashboardHandler := dashboard.NewDashboardHandler(statsService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.New()
	r.Use(gin.Logger())
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

	// 本地存储时由本服务直接提供已上传文件
	if config.AppConfig.StorageBackend == "local" {
		r.Static("/uploads", config.AppConfig.LocalStoragePath)
	}

	// 认证路由
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// 需要认证的路由
	authorized := r.Group("/")
	authorized.Use(middleware.AuthMiddleware(userService))
	{
		authorized.GET("/user/profile", profileHandler.GetProfile)
		authorized.PUT("/user/profile", profileHandler.UpdateProfile)
		authorized.PATCH("/user/profile", profileHandler.UpdateProfile)

		authorized.GET("/user/addresses", addressHandler.ListAddresses)
		authorized.POST("/user/addresses", addressHandler.CreateAddress)
		authorized.GET("/user/addresses/:id", addressHandler.GetAddress)
		authorized.PUT("/user/addresses/:id", addressHandler.UpdateAddress)
		authorized.PATCH("/user/addresses/:id", addressHandler.PatchAddress)
		authorized.DELETE("/user/addresses/:id", addressHandler.DeleteAddress)

		authorized.POST("/files/upload", fileHandler.Upload)
		authorized.GET("/files", fileHandler.List)
		authorized.GET("/files/:id/download", fileHandler.Download)
		authorized.DELETE("/files/:id", fileHandler.Delete)

		authorized.GET("/dashboard", dashboardHandler.Summary)
	}

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

	// 等待中断信号以优雅地关闭服务器
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

// newStorage 根据配置选择 Blob 存储后端
func newStorage() (storage.Storage, error) {
	switch config.AppConfig.StorageBackend {
	case "s3":
		return storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
	case "gcs":
		return storage.NewGCSClient(
			config.AppConfig.GCSProjectID,
			config.AppConfig.GCSBucketName,
			config.AppConfig.GCSCredentialsFile)
	default:
		return storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
	}
}
