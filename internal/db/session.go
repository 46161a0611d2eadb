package db

import (
	"time"

	"gorm.io/gorm"
)

// Session 记录一次登录签发的令牌，支持服务端吊销
type Session struct {
	gorm.Model
	Token     string `gorm:"uniqueIndex;not null"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	ExpiresAt time.Time `gorm:"not null"`
	UserAgent string
	IP        string
}

// Expired 判断会话是否已过期
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
