package db

import (
	"time"

	"gorm.io/gorm"
)

// 验证令牌类型
const (
	TokenTypeEmailVerify   = "email_verify"
	TokenTypePasswordReset = "password_reset"
)

// VerificationTokenTTL 为一次性令牌的隐式有效期
const VerificationTokenTTL = 24 * time.Hour

// VerificationToken 定义了邮箱验证与密码重置使用的一次性令牌
type VerificationToken struct {
	gorm.Model
	Token  string `gorm:"uniqueIndex;not null"`
	UserID uint   `gorm:"index;not null"`
	Type   string `gorm:"index;not null"`
	Used   bool   `gorm:"not null;default:false"`
}

// Expired 判断令牌是否超出隐式有效期
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > VerificationTokenTTL
}
