package service

import (
	"errors"
	"time"

	"github.com/inkwell/internal/auth"
	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTokenInvalid    = errors.New("token is invalid or expired")
	ErrTokenRateLimit  = errors.New("too many tokens issued this hour")
	ErrTokenWrongOwner = errors.New("token does not belong to this flow")
)

// issueWindowLimit bounds how many tokens of one type may be issued per
// account per hour.
const issueWindowLimit = 3

// TokenService issues and consumes single-use verification and password
// reset tokens.
type TokenService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTokenService creates a TokenService instance.
func NewTokenService(gdb *gorm.DB) *TokenService {
	return &TokenService{db: gdb, now: time.Now}
}

// NewTokenServiceWithClock creates a TokenService with an injected clock.
func NewTokenServiceWithClock(gdb *gorm.DB, now func() time.Time) *TokenService {
	return &TokenService{db: gdb, now: now}
}

// IssueEmailVerification creates a fresh verification token, invalidating
// prior unused ones. At most three may be issued per hour per account.
func (s *TokenService) IssueEmailVerification(userID uint) (*db.VerificationToken, error) {
	return s.issue(userID, db.TokenTypeEmailVerify, true)
}

// IssuePasswordReset creates a fresh reset token, invalidating prior unused
// ones.
func (s *TokenService) IssuePasswordReset(userID uint) (*db.VerificationToken, error) {
	return s.issue(userID, db.TokenTypePasswordReset, false)
}

func (s *TokenService) issue(userID uint, tokenType string, rateLimited bool) (*db.VerificationToken, error) {
	if rateLimited {
		var issued int64
		windowStart := s.now().Add(-time.Hour)
		if err := s.db.Model(&db.VerificationToken{}).
			Where("user_id = ? AND type = ? AND created_at > ?", userID, tokenType, windowStart).
			Count(&issued).Error; err != nil {
			return nil, err
		}
		if issued >= issueWindowLimit {
			return nil, ErrTokenRateLimit
		}
	}

	value, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	token := db.VerificationToken{
		Token:  value,
		UserID: userID,
		Type:   tokenType,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// a new token supersedes every unused token of the same type
		if err := tx.Model(&db.VerificationToken{}).
			Where("user_id = ? AND type = ? AND used = ?", userID, tokenType, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// Consume validates a token of the given type and marks it used. Unknown,
// used and expired tokens all collapse into ErrTokenInvalid.
func (s *TokenService) Consume(value, tokenType string) (*db.VerificationToken, error) {
	var token db.VerificationToken
	if err := s.db.Where("token = ? AND type = ?", value, tokenType).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if token.Used || token.Expired(s.now()) {
		return nil, ErrTokenInvalid
	}

	token.Used = true
	if err := s.db.Save(&token).Error; err != nil {
		return nil, err
	}

	return &token, nil
}
