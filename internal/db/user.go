package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 角色常量，权限从高到低
const (
	RoleAdmin      = "ADMIN"
	RoleEditor     = "EDITOR"
	RoleAuthor     = "AUTHOR"
	RoleSubscriber = "SUBSCRIBER"
)

// MetadataSourceSeed 标记由部署脚本播种的账号，不参与首位注册者判定
const MetadataSourceSeed = "seed"

// User 定义了用户模型
type User struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;not null"`
	Name          string `gorm:"not null"`
	Password      string `gorm:"not null"`
	Role          string `gorm:"not null;default:SUBSCRIBER"`
	EmailVerified bool   `gorm:"not null;default:false"`

	Preference *Preference         `gorm:"constraint:OnDelete:CASCADE"`
	Metadata   *Metadata           `gorm:"constraint:OnDelete:CASCADE"`
	Sessions   []Session           `gorm:"constraint:OnDelete:CASCADE"`
	Tokens     []VerificationToken `gorm:"constraint:OnDelete:CASCADE"`
	Posts      []Post              `gorm:"constraint:OnDelete:CASCADE"`
	Comments   []Comment           `gorm:"constraint:OnDelete:CASCADE"`
}

// Preference 保存用户偏好设置
type Preference struct {
	gorm.Model
	UserID             uint   `gorm:"uniqueIndex;not null"`
	EmailNotifications bool   `gorm:"not null;default:true"`
	Theme              string `gorm:"not null;default:light"`
}

// TableName 固定表名，避免复数化歧义
func (Preference) TableName() string {
	return "user_preferences"
}

// Metadata 保存用户的登录统计与注册来源
type Metadata struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex;not null"`
	LoginCount  int  `gorm:"not null;default:0"`
	LastLoginAt *time.Time
	LastLoginIP string
	Source      string `gorm:"not null;default:web"`
}

// TableName 固定表名，metadata 的复数形式不可预测
func (Metadata) TableName() string {
	return "user_metadata"
}

// ValidRole 判断角色是否属于固定枚举
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleAuthor, RoleSubscriber:
		return true
	}
	return false
}

// NormalizeEmail 统一邮箱大小写与空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureSeedUser 存在性检查：若提供的邮箱与密码均非空且不存在对应账号，
// 则创建一个 bcrypt 哈希的管理员账号，注册来源标记为 seed。
func EnsureSeedUser(email, password string) error {
	trimmedEmail := NormalizeEmail(email)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), 12)
		if err != nil {
			return err
		}

		user := User{
			Email:         trimmedEmail,
			Name:          "Administrator",
			Password:      string(hashed),
			Role:          RoleAdmin,
			EmailVerified: true,
			Preference:    &Preference{},
			Metadata:      &Metadata{Source: MetadataSourceSeed},
		}
		return DB.Create(&user).Error
	}

	return nil
}
