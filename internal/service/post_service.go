package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrSlugTaken     = errors.New("slug is already in use")
	ErrSlugRequired  = errors.New("slug could not be derived from title")
	ErrTitleRequired = errors.New("post title is required")
)

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title          string
	Slug           string
	Content        string
	Excerpt        string
	CoverURL       string
	SEOTitle       string
	SEODescription string
	CategoryIDs    []uint
	TagIDs         []uint
	UserID         uint
}

// PostFilter describes filters for the public post listing.
type PostFilter struct {
	CategorySlug string
	TagSlug      string
	Page         int
	PerPage      int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PostOrder is one (post id, sort order) pair of a bulk reorder.
type PostOrder struct {
	ID    uint `json:"id" binding:"required"`
	Order int  `json:"order"`
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Create normalizes the content, derives the slug and counters, and persists
// the post with its category and tag associations in one transaction.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if err := s.ensureSlugFree(slug, 0); err != nil {
		return nil, err
	}

	content := SanitizeHTML(NormalizeContent(input.Content))

	post := db.Post{
		Title:          title,
		Slug:           slug,
		Content:        content,
		Excerpt:        deriveExcerpt(input.Excerpt, content),
		CoverURL:       strings.TrimSpace(input.CoverURL),
		UserID:         input.UserID,
		SEOTitle:       strings.TrimSpace(input.SEOTitle),
		SEODescription: strings.TrimSpace(input.SEODescription),
		ReadingTime:    calculateReadingTime(content),
		WordCount:      countWords(content),
	}

	order, err := s.nextSortOrder()
	if err != nil {
		return nil, err
	}
	post.SortOrder = order

	return s.saveWithAssociations(&post, input.CategoryIDs, input.TagIDs)
}

// Update applies edits to an existing post, re-deriving content counters.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if err := s.ensureSlugFree(slug, post.ID); err != nil {
		return nil, err
	}

	content := SanitizeHTML(NormalizeContent(input.Content))

	post.Title = title
	post.Slug = slug
	post.Content = content
	post.Excerpt = deriveExcerpt(input.Excerpt, content)
	post.CoverURL = strings.TrimSpace(input.CoverURL)
	post.SEOTitle = strings.TrimSpace(input.SEOTitle)
	post.SEODescription = strings.TrimSpace(input.SEODescription)
	post.ReadingTime = calculateReadingTime(content)
	post.WordCount = countWords(content)

	return s.saveWithAssociations(post, input.CategoryIDs, input.TagIDs)
}

// Get fetches a post by id with associations preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Categories").Preload("Tags").Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPublishedBySlug fetches a published post for the public surface.
func (s *PostService) GetPublishedBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Categories").Preload("Tags").Preload("User").
		Where("slug = ? AND published = ?", slug, true).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListAll returns every post for the admin surface, manual order first.
func (s *PostService) ListAll() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("Categories").Preload("Tags").
		Order("sort_order asc").Order("created_at desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListPublished returns published posts matching the filter.
func (s *PostService) ListPublished(filter PostFilter) (PostListResult, error) {
	result := PostListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 10),
	}

	query := s.db.Model(&db.Post{}).Where("published = ?", true)
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.
			Joins("JOIN post_categories ON post_categories.post_id = posts.id").
			Joins("JOIN categories ON categories.id = post_categories.category_id").
			Where("categories.slug = ?", slug)
	}
	if slug := strings.TrimSpace(filter.TagSlug); slug != "" {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", slug)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Preload("Categories").Preload("Tags").Preload("User").
		Order("sort_order asc").Order("published_at desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Posts).Error; err != nil {
		return result, err
	}

	return result, nil
}

// Publish flips the published flag. The published_at timestamp is set once
// on first publish and survives later unpublish/republish cycles.
func (s *PostService) Publish(id uint) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	post.Published = true
	if post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Unpublish hides a post while keeping its original publication timestamp.
func (s *PostService) Unpublish(id uint) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	post.Published = false
	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post; join rows and comments go with it.
func (s *PostService) Delete(id uint) error {
	post, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(post).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", post.ID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(post).Error
	})
}

// Reorder applies every (id, order) pair in a single transaction; either all
// posts change order or none do. Order values are taken as given, the caller
// is responsible for contiguity and uniqueness.
func (s *PostService) Reorder(orders []PostOrder) error {
	if len(orders) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range orders {
			result := tx.Model(&db.Post{}).Where("id = ?", entry.ID).Update("sort_order", entry.Order)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrPostNotFound
			}
		}
		return nil
	})
}

func (s *PostService) ensureSlugFree(slug string, selfID uint) error {
	var existing db.Post
	query := s.db.Where("slug = ?", slug)
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.First(&existing).Error; err == nil {
		return ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *PostService) saveWithAssociations(post *db.Post, categoryIDs, tagIDs []uint) (*db.Post, error) {
	return post, s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}

		var categories []db.Category
		if len(categoryIDs) > 0 {
			if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
				return err
			}
			if len(categories) != len(categoryIDs) {
				return ErrCategoryNotFound
			}
		}
		if err := tx.Model(post).Association("Categories").Replace(categories); err != nil {
			return err
		}

		var tags []db.Tag
		if len(tagIDs) > 0 {
			if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
				return err
			}
			if len(tags) != len(tagIDs) {
				return ErrTagNotFound
			}
		}
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}

		return tx.Preload("Categories").Preload("Tags").First(post, post.ID).Error
	})
}

func (s *PostService) nextSortOrder() (int, error) {
	var maxSort int
	if err := s.db.Model(&db.Post{}).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxSort).Error; err != nil {
		return 0, err
	}
	return maxSort + 1, nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func plainText(content string) string {
	stripped := htmlTagPattern.ReplaceAllString(content, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

func deriveExcerpt(explicit, content string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}

	plain := plainText(content)
	const limit = 160
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	return string(runes[:limit]) + "…"
}

func countWords(content string) int {
	return len(strings.Fields(plainText(content)))
}

func calculateReadingTime(content string) int {
	trimmed := strings.TrimSpace(plainText(content))
	if trimmed == "" {
		return 0
	}

	runes := []rune(trimmed)
	minutes := len(runes) / 400
	if len(runes)%400 != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers a title into a URL-safe slug.
func Slugify(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	slug := slugStripPattern.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}
