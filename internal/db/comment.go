package db

import "gorm.io/gorm"

// Comment 定义了评论模型，支持一层回复
type Comment struct {
	gorm.Model
	Content  string `gorm:"not null"`
	PostID   uint   `gorm:"index;not null"`
	UserID   uint   `gorm:"index;not null"`
	User     User
	ParentID *uint `gorm:"index"`
	Approved bool  `gorm:"not null;default:false"`

	Replies []Comment `gorm:"foreignKey:ParentID"`
}
