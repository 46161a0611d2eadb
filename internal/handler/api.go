package handler

import (
	"time"

	"github.com/inkwell/internal/auth"
	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/mail"
	"github.com/inkwell/internal/service"
	"github.com/inkwell/internal/storage"
	"gorm.io/gorm"
)

// categoryCacheTTL 是分类列表缓存的固定过期窗口
const categoryCacheTTL = 10 * time.Minute

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	jwt        *auth.JWTService
	users      *service.UserService
	sessions   *service.SessionService
	tokens     *service.TokenService
	posts      *service.PostService
	comments   *service.CommentService
	categories *service.CategoryService
	tags       *service.TagService
	uploads    *storage.Adapter
	mailer     *mail.Mailer

	maxUploadSize int64
	cookieSecure  bool
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, uploads *storage.Adapter, mailer *mail.Mailer) *API {
	categoryCache := cache.New[[]db.Category](categoryCacheTTL, nil)

	return &API{
		db:         gdb,
		jwt:        auth.NewJWTService(cfg.JWTSecret),
		users:      service.NewUserService(gdb),
		sessions:   service.NewSessionService(gdb),
		tokens:     service.NewTokenService(gdb),
		posts:      service.NewPostService(gdb),
		comments:   service.NewCommentService(gdb),
		categories: service.NewCategoryService(gdb, categoryCache),
		tags:       service.NewTagService(gdb),
		uploads:    uploads,
		mailer:     mailer,

		maxUploadSize: cfg.MaxUploadSize,
		cookieSecure:  cfg.CookieSecure,
	}
}

// DB exposes the underlying gorm instance for tests.
func (a *API) DB() *gorm.DB {
	return a.db
}
