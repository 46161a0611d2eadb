package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 inkwell.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "inkwell.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate 为核心模型创建表并执行历史数据回填。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&User{},
		&Preference{},
		&Metadata{},
		&Session{},
		&VerificationToken{},
		&Post{},
		&Comment{},
		&Category{},
		&Tag{},
	); err != nil {
		return err
	}

	// 历史数据中邮箱可能包含大写字母，统一为小写
	if err := gdb.Model(&User{}).
		Where("email <> lower(email)").
		Update("email", gorm.Expr("lower(email)")).Error; err != nil {
		return err
	}
	if err := gdb.Model(&User{}).
		Where("role = '' OR role IS NULL").
		Update("role", RoleSubscriber).Error; err != nil {
		return err
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
