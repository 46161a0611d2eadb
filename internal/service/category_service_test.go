package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCategoryServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:category-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestCategoryListServedFromCache(t *testing.T) {
	gdb, cleanup := setupCategoryServiceTestDB(t)
	defer cleanup()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	listing := cache.New[[]db.Category](10*time.Minute, func() time.Time { return current })
	svc := NewCategoryService(gdb, listing)

	if _, err := svc.Create(CategoryInput{Name: "Go"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 category, got %d", len(first))
	}

	// a direct insert bypasses the service, so the cached listing wins
	if err := gdb.Create(&db.Category{Name: "Sneaky", Slug: "sneaky"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	cached, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected cached listing of 1, got %d", len(cached))
	}

	// after the window passes the listing refreshes
	current = current.Add(11 * time.Minute)
	fresh, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected refreshed listing of 2, got %d", len(fresh))
	}
}

func TestCategoryMutationsInvalidateCache(t *testing.T) {
	gdb, cleanup := setupCategoryServiceTestDB(t)
	defer cleanup()

	listing := cache.New[[]db.Category](10*time.Minute, nil)
	svc := NewCategoryService(gdb, listing)

	created, err := svc.Create(CategoryInput{Name: "News"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.List(); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if _, err := svc.Update(created.ID, CategoryInput{Name: "Updates"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after) != 1 || after[0].Name != "Updates" {
		t.Fatalf("expected update to be visible immediately, got %+v", after)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	empty, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected delete to be visible immediately, got %d", len(empty))
	}
}

func TestCategorySlugUniqueness(t *testing.T) {
	gdb, cleanup := setupCategoryServiceTestDB(t)
	defer cleanup()

	svc := NewCategoryService(gdb, cache.New[[]db.Category](10*time.Minute, nil))

	if _, err := svc.Create(CategoryInput{Name: "Go Tips"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// same derived slug
	if _, err := svc.Create(CategoryInput{Name: "go tips"}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
	if _, err := svc.Create(CategoryInput{Name: ""}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestCategoryDeleteBlockedWhileInUse(t *testing.T) {
	gdb, cleanup := setupCategoryServiceTestDB(t)
	defer cleanup()

	svc := NewCategoryService(gdb, cache.New[[]db.Category](10*time.Minute, nil))

	category, err := svc.Create(CategoryInput{Name: "Busy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	author := db.User{Email: "cat-author@example.com", Name: "Author", Password: "hash", Role: db.RoleAdmin}
	if err := gdb.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	posts := NewPostService(gdb)
	post, err := posts.Create(PostInput{Title: "Categorized", UserID: author.ID, CategoryIDs: []uint{category.ID}})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}

	if err := posts.Delete(post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("expected delete after detach, got %v", err)
	}
}
