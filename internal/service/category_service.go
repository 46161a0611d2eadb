package service

import (
	"errors"
	"strings"

	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is associated with posts")
	ErrNameRequired     = errors.New("name is required")
)

// CategoryService wraps category operations. The listing is served from a
// process-lifetime TTL cache owned by this service; every mutation
// invalidates it.
type CategoryService struct {
	db      *gorm.DB
	listing *cache.TTLCache[[]db.Category]
}

// CategoryInput represents fields accepted when creating or updating a
// category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// NewCategoryService creates a CategoryService around an injected cache.
func NewCategoryService(gdb *gorm.DB, listing *cache.TTLCache[[]db.Category]) *CategoryService {
	return &CategoryService{db: gdb, listing: listing}
}

// List returns all categories ordered by name, served from cache while the
// expiry window holds.
func (s *CategoryService) List() ([]db.Category, error) {
	if cached, ok := s.listing.Get(); ok {
		return cached, nil
	}

	var categories []db.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}

	s.listing.Set(categories)
	return categories, nil
}

// Get fetches a category by id.
func (s *CategoryService) Get(id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create inserts a category with a unique slug.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	var existing db.Category
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := db.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}

	s.listing.Invalidate()
	return &category, nil
}

// Update edits a category while keeping slug uniqueness.
func (s *CategoryService) Update(id uint, input CategoryInput) (*db.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	var existing db.Category
	if err := s.db.Where("slug = ? AND id <> ?", slug, id).First(&existing).Error; err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category.Name = name
	category.Slug = slug
	category.Description = strings.TrimSpace(input.Description)

	if err := s.db.Save(category).Error; err != nil {
		return nil, err
	}

	s.listing.Invalidate()
	return category, nil
}

// Delete removes a category that has no posts attached.
func (s *CategoryService) Delete(id uint) error {
	category, err := s.Get(id)
	if err != nil {
		return err
	}

	count := s.db.Model(category).Association("Posts").Count()
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.db.Unscoped().Delete(category).Error; err != nil {
		return err
	}

	s.listing.Invalidate()
	return nil
}
