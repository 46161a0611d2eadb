package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// 存储后端取值
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageCDN   = "cdn"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr   string
	Port         string
	DatabasePath string
	JWTSecret    string
	GinMode      string
	SiteBaseURL  string
	CookieSecure bool

	UploadDir     string
	UploadURLPath string
	MaxUploadSize int64

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3Bucket    string
	S3UseSSL    bool

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOr("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	maxUpload := int64(5 << 20)
	if raw := strings.TrimSpace(os.Getenv("MAX_UPLOAD_SIZE")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxUpload = parsed
		}
	}

	smtpPort := 587
	if raw := strings.TrimSpace(os.Getenv("SMTP_PORT")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			smtpPort = parsed
		}
	}

	return AppConfig{
		ListenAddr:   listenAddr,
		Port:         port,
		DatabasePath: envOr("DATABASE_PATH", "inkwell.db"),
		JWTSecret:    envOr("JWT_SECRET", "inkwell-dev-secret"),
		GinMode:      envOr("GIN_MODE", "release"),
		SiteBaseURL:  envOr("SITE_BASE_URL", "http://localhost:8080"),
		CookieSecure: envOr("COOKIE_SECURE", "") == "true",

		UploadDir:     envOr("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath: envOr("UPLOAD_URL_PATH", "/uploads"),
		MaxUploadSize: maxUpload,

		SMTPHost: strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort: smtpPort,
		SMTPUser: strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPass: strings.TrimSpace(os.Getenv("SMTP_PASS")),
		SMTPFrom: strings.TrimSpace(os.Getenv("SMTP_FROM")),

		S3Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3Region:    strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3UseSSL:    envOr("S3_USE_SSL", "true") == "true",

		CloudinaryCloudName: strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME")),
		CloudinaryAPIKey:    strings.TrimSpace(os.Getenv("CLOUDINARY_API_KEY")),
		CloudinaryAPISecret: strings.TrimSpace(os.Getenv("CLOUDINARY_API_SECRET")),

		SeedAdminEmail:    strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")),
		SeedAdminPassword: strings.TrimSpace(os.Getenv("SEED_ADMIN_PASSWORD")),
	}
}

// StorageBackend 根据互斥的凭据组挑选唯一的上传后端。
// Cloudinary 凭据优先于对象存储，两者都缺省时落到本地磁盘。
func (c AppConfig) StorageBackend() string {
	if c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != "" {
		return StorageCDN
	}
	if c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != "" {
		return StorageS3
	}
	return StorageLocal
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
