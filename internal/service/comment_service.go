package service

import (
	"errors"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrParentMismatch  = errors.New("parent comment belongs to another post")
	ErrContentRequired = errors.New("comment content is required")
)

// CommentService wraps comment creation and moderation.
type CommentService struct {
	db *gorm.DB
}

// CommentInput represents fields accepted when creating a comment.
type CommentInput struct {
	PostID   uint
	ParentID *uint
	Content  string
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Create stores a comment. Administrator comments are approved immediately;
// every other role starts unapproved. Replies are limited to one level: the
// parent must be a top-level comment on the same post.
func (s *CommentService) Create(userID uint, role string, input CommentInput) (*db.Comment, error) {
	if input.Content == "" {
		return nil, ErrContentRequired
	}

	var post db.Post
	if err := s.db.First(&post, input.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if input.ParentID != nil {
		var parent db.Comment
		if err := s.db.First(&parent, *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.PostID != input.PostID || parent.ParentID != nil {
			return nil, ErrParentMismatch
		}
	}

	comment := db.Comment{
		Content:  input.Content,
		PostID:   input.PostID,
		UserID:   userID,
		ParentID: input.ParentID,
		Approved: role == db.RoleAdmin,
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListApproved returns approved top-level comments for a post with one level
// of approved replies.
func (s *CommentService) ListApproved(postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.
		Preload("User").
		Preload("Replies", "approved = ?", true).
		Preload("Replies.User").
		Where("post_id = ? AND parent_id IS NULL AND approved = ?", postID, true).
		Order("created_at asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ListPending returns unapproved comments, optionally scoped to one post.
func (s *CommentService) ListPending(postID uint) ([]db.Comment, error) {
	query := s.db.Preload("User").Where("approved = ?", false)
	if postID != 0 {
		query = query.Where("post_id = ?", postID)
	}

	var comments []db.Comment
	if err := query.Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Approve flips the approved flag.
func (s *CommentService) Approve(id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	comment.Approved = true
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Reject hard-deletes a comment and its replies. No rejected state is kept.
func (s *CommentService) Reject(id uint) error {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("parent_id = ?", comment.ID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&comment).Error
	})
}
