package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/repository"
	"github.com/sceneyard/sceneyard/internal/utils"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrTagNotFound      = errors.New("tag not found")
)

// CatalogService owns category and tag rules: deterministic slugging and
// idempotent tag creation.
type CatalogService struct {
	db           *gorm.DB
	categoryRepo *repository.CategoryRepository
	tagRepo      *repository.TagRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		db:           db,
		categoryRepo: repository.NewCategoryRepository(db),
		tagRepo:      repository.NewTagRepository(db),
	}
}

func (s *CatalogService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

func (s *CatalogService) CreateCategory(name string) (*models.Category, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, ErrNameRequired
	}

	existing, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryExists
	}

	category := &models.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: slug,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		logger.Log.Error("Failed to create category",
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug),
	)
	return category, nil
}

// UpdateCategory renames a category; the slug is re-derived from the new
// name.
func (s *CatalogService) UpdateCategory(id uuid.UUID, name string) (*models.Category, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, ErrNameRequired
	}

	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	category.Name = name
	category.Slug = slug

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CatalogService) DeleteCategory(id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	return s.categoryRepo.Delete(id)
}

func (s *CatalogService) ListTags() ([]models.Tag, error) {
	return s.tagRepo.GetAll()
}

// CreateOrGetTag looks a tag up by normalized slug and inserts only on a
// miss, so creating the same tag twice (in any casing) is safe to retry and
// always returns the same row.
func (s *CatalogService) CreateOrGetTag(name string) (*models.Tag, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, ErrNameRequired
	}

	existing, err := s.tagRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tag := &models.Tag{
		ID:   uuid.New(),
		Name: name,
		Slug: slug,
	}

	if err := s.tagRepo.Create(tag); err != nil {
		// Lost a race to a concurrent insert of the same slug; the lookup
		// now hits.
		if again, lookupErr := s.tagRepo.GetBySlug(slug); lookupErr == nil && again != nil {
			return again, nil
		}
		return nil, err
	}

	logger.Log.Info("Tag created",
		zap.String("tag_id", tag.ID.String()),
		zap.String("slug", tag.Slug),
	)
	return tag, nil
}

func (s *CatalogService) DeleteTag(id uuid.UUID) error {
	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return err
	}
	if tag == nil {
		return ErrTagNotFound
	}

	return s.tagRepo.Delete(id)
}
