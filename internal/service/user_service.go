package service

import (
	"errors"
	"time"

	"github.com/inkwell/internal/auth"
	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("email or password incorrect")
	ErrWeakPassword       = errors.New("password does not meet strength rules")
	ErrInvalidRole        = errors.New("role is not a valid value")
	ErrSelfDelete         = errors.New("cannot delete own account")
	ErrLastAdmin          = errors.New("cannot demote the last administrator")
)

// UserService wraps account related database operations.
type UserService struct {
	db *gorm.DB
}

// RegisterInput represents fields accepted when registering an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// UpdateUserInput represents fields an administrator may change on a user.
type UpdateUserInput struct {
	Name          string
	Role          string
	EmailVerified *bool
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register creates an account together with its default preference and
// metadata records in one transaction. The first registrant that is not a
// seeded account is promoted to administrator and auto-verified.
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	email := db.NormalizeEmail(input.Email)

	if check := auth.ValidatePassword(input.Password); !check.Valid {
		return nil, ErrWeakPassword
	}

	var existing db.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	registered, err := s.registeredUserCount()
	if err != nil {
		return nil, err
	}

	role := db.RoleSubscriber
	verified := false
	if registered == 0 {
		role = db.RoleAdmin
		verified = true
	}

	user := db.User{
		Email:         email,
		Name:          input.Name,
		Password:      hashed,
		Role:          role,
		EmailVerified: verified,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&db.Preference{UserID: user.ID}).Error; err != nil {
			return err
		}
		return tx.Create(&db.Metadata{UserID: user.ID, Source: "web"}).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate checks credentials and returns the account. Lookup failure
// and password mismatch are collapsed into one error so callers cannot tell
// which field was wrong.
func (s *UserService) Authenticate(email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", db.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// RecordLogin increments the login counter and stores the last-login
// snapshot, creating the metadata row when it is missing.
func (s *UserService) RecordLogin(userID uint, ip string, at time.Time) error {
	var meta db.Metadata
	err := s.db.Where("user_id = ?", userID).First(&meta).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		meta = db.Metadata{UserID: userID, Source: "web"}
	}

	meta.LoginCount++
	meta.LastLoginAt = &at
	meta.LastLoginIP = ip

	return s.db.Save(&meta).Error
}

// Get fetches a user by id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail fetches a user by normalized email.
func (s *UserService) GetByEmail(email string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", db.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by creation time.
func (s *UserService) List() ([]db.User, error) {
	var users []db.User
	if err := s.db.Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies administrator edits to a user. Demoting the last
// administrator is blocked.
func (s *UserService) Update(id uint, input UpdateUserInput) (*db.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Role != "" {
		if !db.ValidRole(input.Role) {
			return nil, ErrInvalidRole
		}
		if user.Role == db.RoleAdmin && input.Role != db.RoleAdmin {
			admins, err := s.adminCount()
			if err != nil {
				return nil, err
			}
			if admins <= 1 {
				return nil, ErrLastAdmin
			}
		}
		user.Role = input.Role
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.EmailVerified != nil {
		user.EmailVerified = *input.EmailVerified
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// MarkVerified flips the email-verified flag.
func (s *UserService) MarkVerified(userID uint) error {
	return s.db.Model(&db.User{}).Where("id = ?", userID).Update("email_verified", true).Error
}

// UpdatePassword stores a new password hash.
func (s *UserService) UpdatePassword(userID uint, plain string) error {
	if check := auth.ValidatePassword(plain); !check.Valid {
		return ErrWeakPassword
	}
	hashed, err := auth.HashPassword(plain)
	if err != nil {
		return err
	}
	return s.db.Model(&db.User{}).Where("id = ?", userID).Update("password", hashed).Error
}

// Delete removes a user together with its owned records. The rows are
// dropped for good so the email can be registered again later. Self-deletion
// is blocked at this layer as well as in the handler.
func (s *UserService) Delete(id, callerID uint) error {
	if id == callerID {
		return ErrSelfDelete
	}

	user, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&db.Post{}).Where("user_id = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Unscoped().Where("post_id IN ?", postIDs).Delete(&db.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM post_categories WHERE post_id IN ?", postIDs).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM post_tags WHERE post_id IN ?", postIDs).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&db.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&db.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&db.VerificationToken{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&db.Preference{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&db.Metadata{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(user).Error
	})
}

// registeredUserCount counts accounts whose metadata source is not "seed".
func (s *UserService) registeredUserCount() (int64, error) {
	var count int64
	err := s.db.Model(&db.User{}).
		Joins("JOIN user_metadata ON user_metadata.user_id = users.id").
		Where("user_metadata.source <> ?", db.MetadataSourceSeed).
		Count(&count).Error
	return count, err
}

func (s *UserService) adminCount() (int64, error) {
	var count int64
	err := s.db.Model(&db.User{}).Where("role = ?", db.RoleAdmin).Count(&count).Error
	return count, err
}
