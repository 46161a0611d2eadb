package router

import (
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/handler"
)

// Setup 配置 Gin 引擎和路由
func Setup(api *handler.API, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.Default()

	// 本地上传的静态文件服务
	if uploadDir != "" && uploadURLPath != "" {
		r.Static(uploadURLPath, uploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 认证相关路由
	auth := r.Group("/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
		auth.GET("/me", api.AuthRequired(), api.Me)
		auth.POST("/verify-email", api.VerifyEmail)
		auth.POST("/resend-verification", api.ResendVerification)
		auth.POST("/reset-password", api.RequestPasswordReset)
		auth.PUT("/reset-password", api.ConfirmPasswordReset)
	}

	// 公开只读路由
	r.GET("/posts", api.ListPublishedPosts)
	r.GET("/posts/:slug", api.GetPublishedPost)
	r.GET("/categories", api.ListCategories)
	r.GET("/tags", api.ListTags)
	r.GET("/comments", api.ListComments)

	// 评论需要登录；审核操作仅管理员可用
	comments := r.Group("/comments")
	{
		comments.POST("", api.AuthRequired(), api.CreateComment)

		moderation := comments.Group("")
		moderation.Use(api.AuthRequired(), api.RequireRole(db.RoleAdmin))
		{
			moderation.GET("/pending", api.ListPendingComments)
			moderation.PUT("/:id/approve", api.ApproveComment)
			moderation.DELETE("/:id/approve", api.RejectComment)
		}
	}

	// 上传需要登录
	upload := r.Group("/upload")
	upload.Use(api.AuthRequired())
	{
		upload.POST("/image", api.UploadImage)
		upload.DELETE("/image", api.DeleteImage)
	}

	// 后台管理路由，每个分组都显式要求管理员角色
	admin := r.Group("/admin")
	admin.Use(api.AuthRequired(), api.RequireRole(db.RoleAdmin))
	{
		admin.GET("/posts", api.ListPosts)
		admin.GET("/posts/:id", api.GetPost)
		admin.POST("/posts", api.CreatePost)
		admin.PUT("/posts/reorder", api.ReorderPosts)
		admin.PUT("/posts/:id", api.UpdatePost)
		admin.DELETE("/posts/:id", api.DeletePost)
		admin.PUT("/posts/:id/publish", api.PublishPost)
		admin.DELETE("/posts/:id/publish", api.UnpublishPost)

		admin.GET("/users", api.ListUsers)
		admin.GET("/users/:id", api.GetUser)
		admin.PUT("/users/:id", api.UpdateUser)
		admin.DELETE("/users/:id", api.DeleteUser)

		admin.POST("/categories", api.CreateCategory)
		admin.PUT("/categories/:id", api.UpdateCategory)
		admin.DELETE("/categories/:id", api.DeleteCategory)

		admin.POST("/tags", api.CreateTag)
		admin.PUT("/tags/:id", api.UpdateTag)
		admin.DELETE("/tags/:id", api.DeleteTag)
	}

	return r
}
