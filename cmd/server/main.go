package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/handler"
	"github.com/inkwell/internal/mail"
	"github.com/inkwell/internal/router"
	"github.com/inkwell/internal/storage"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 可选的种子管理员，注册来源标记为 seed
	if err := db.EnsureSeedUser(cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		log.Fatalf("failed to ensure seed user: %v", err)
	}

	uploads, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage backend: %v", err)
	}

	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SiteBaseURL)
	if !mailer.Enabled() {
		log.Println("smtp not configured, transactional email disabled")
	}

	api := handler.NewAPI(db.DB, cfg, uploads, mailer)

	// 设置并运行 Gin 服务器
	r := router.Setup(api, cfg.UploadDir, cfg.UploadURLPath)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// buildStorage 根据配置的互斥凭据组选择唯一的上传后端
func buildStorage(cfg config.AppConfig) (*storage.Adapter, error) {
	local := storage.NewLocal(cfg.UploadDir, cfg.UploadURLPath)

	switch cfg.StorageBackend() {
	case config.StorageCDN:
		cdn, err := storage.NewCDN(storage.CDNConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
		if err != nil {
			return nil, err
		}
		log.Println("uploads: using cloudinary backend")
		return storage.NewAdapter(local, cdn), nil

	case config.StorageS3:
		s3, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Println("uploads: using s3 backend")
		return storage.NewAdapter(local, s3), nil

	default:
		log.Println("uploads: using local filesystem backend")
		return storage.NewAdapter(local, nil), nil
	}
}
