package service

import (
	"errors"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService tracks server-side session rows. Together with the token
// signature check it forms the guard's second, revocable validity layer.
type SessionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionService creates a SessionService instance.
func NewSessionService(gdb *gorm.DB) *SessionService {
	return &SessionService{db: gdb, now: time.Now}
}

// Create persists a session binding the exact token string to an account.
func (s *SessionService) Create(userID uint, token, userAgent, ip string, expiresAt time.Time) (*db.Session, error) {
	session := db.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		UserAgent: userAgent,
		IP:        ip,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindValid looks up a non-expired session by exact token string.
func (s *SessionService) FindValid(token string) (*db.Session, error) {
	var session db.Session
	if err := s.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// DeleteByToken removes the session matching a token. Deleting a session
// that does not exist is not an error; logout stays idempotent.
func (s *SessionService) DeleteByToken(token string) error {
	return s.db.Unscoped().Where("token = ?", token).Delete(&db.Session{}).Error
}

// RevokeAllForUser removes every session for an account, e.g. after a
// completed password reset.
func (s *SessionService) RevokeAllForUser(userID uint) error {
	return s.db.Unscoped().Where("user_id = ?", userID).Delete(&db.Session{}).Error
}

// PruneExpired removes sessions past their expiry.
func (s *SessionService) PruneExpired() error {
	return s.db.Unscoped().Where("expires_at <= ?", s.now()).Delete(&db.Session{}).Error
}
