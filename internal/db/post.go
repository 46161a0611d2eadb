package db

import (
	"time"

	"gorm.io/gorm"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Content     string
	Excerpt     string
	CoverURL    string
	Published   bool `gorm:"not null;default:false"`
	PublishedAt *time.Time
	UserID      uint `gorm:"index;not null"`
	User        User
	SortOrder   int `gorm:"not null;default:0"`
	ReadingTime int
	WordCount   int

	SEOTitle       string
	SEODescription string

	Categories []Category `gorm:"many2many:post_categories;"`
	Tags       []Tag      `gorm:"many2many:post_tags;"`
	Comments   []Comment  `gorm:"constraint:OnDelete:CASCADE"`
}
