package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTokenServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:token-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func createTokenTestUser(t *testing.T, gdb *gorm.DB, email string) *db.User {
	t.Helper()
	user := db.User{Email: email, Name: "Token", Password: "hash", Role: db.RoleSubscriber}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func TestIssueEmailVerificationRateLimited(t *testing.T) {
	gdb, cleanup := setupTokenServiceTestDB(t)
	defer cleanup()

	user := createTokenTestUser(t, gdb, "limit@example.com")
	svc := NewTokenService(gdb)

	for i := 0; i < issueWindowLimit; i++ {
		if _, err := svc.IssueEmailVerification(user.ID); err != nil {
			t.Fatalf("issue %d: %v", i+1, err)
		}
	}

	if _, err := svc.IssueEmailVerification(user.ID); !errors.Is(err, ErrTokenRateLimit) {
		t.Fatalf("expected ErrTokenRateLimit on fourth issue, got %v", err)
	}

	// once the window has passed, issuance resumes
	later := NewTokenServiceWithClock(gdb, func() time.Time { return time.Now().Add(2 * time.Hour) })
	if _, err := later.IssueEmailVerification(user.ID); err != nil {
		t.Fatalf("expected issuance after window, got %v", err)
	}
}

func TestIssuePasswordResetNotRateLimited(t *testing.T) {
	gdb, cleanup := setupTokenServiceTestDB(t)
	defer cleanup()

	user := createTokenTestUser(t, gdb, "reset@example.com")
	svc := NewTokenService(gdb)

	for i := 0; i < issueWindowLimit+2; i++ {
		if _, err := svc.IssuePasswordReset(user.ID); err != nil {
			t.Fatalf("issue %d: %v", i+1, err)
		}
	}
}

func TestIssueInvalidatesPriorTokens(t *testing.T) {
	gdb, cleanup := setupTokenServiceTestDB(t)
	defer cleanup()

	user := createTokenTestUser(t, gdb, "supersede@example.com")
	svc := NewTokenService(gdb)

	first, err := svc.IssueEmailVerification(user.ID)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := svc.IssueEmailVerification(user.ID)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	if _, err := svc.Consume(first.Token, db.TokenTypeEmailVerify); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected superseded token to be invalid, got %v", err)
	}
	if _, err := svc.Consume(second.Token, db.TokenTypeEmailVerify); err != nil {
		t.Fatalf("expected latest token to consume, got %v", err)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	gdb, cleanup := setupTokenServiceTestDB(t)
	defer cleanup()

	user := createTokenTestUser(t, gdb, "once@example.com")
	svc := NewTokenService(gdb)

	token, err := svc.IssueEmailVerification(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Consume(token.Token, db.TokenTypeEmailVerify); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if _, err := svc.Consume(token.Token, db.TokenTypeEmailVerify); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected second consume to fail, got %v", err)
	}
}

func TestConsumeChecksTypeAndExpiry(t *testing.T) {
	gdb, cleanup := setupTokenServiceTestDB(t)
	defer cleanup()

	user := createTokenTestUser(t, gdb, "expiry@example.com")
	svc := NewTokenService(gdb)

	token, err := svc.IssueEmailVerification(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// wrong type does not match
	if _, err := svc.Consume(token.Token, db.TokenTypePasswordReset); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected type mismatch to fail, got %v", err)
	}

	// expired tokens collapse into the same error
	expired := NewTokenServiceWithClock(gdb, func() time.Time {
		return time.Now().Add(db.VerificationTokenTTL + time.Hour)
	})
	if _, err := expired.Consume(token.Token, db.TokenTypeEmailVerify); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}
