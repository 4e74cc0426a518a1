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
	ErrTitleRequired      = errors.New("title is required")
	ErrNegativeCredits    = errors.New("credits cost cannot be negative")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrIncompleteAssetSet = errors.New("template requires exactly one preview, thumbnail and download asset")
)

type CreateTemplateInput struct {
	Title       string
	Description string
	CreditsCost int
	Published   bool
	CategoryIDs []uuid.UUID
	TagIDs      []uuid.UUID
	TagNames    []string
}

type AssetInput struct {
	Kind       models.AssetKind
	StorageKey string
	Mime       string
	Bytes      int64
}

type TemplateService struct {
	db           *gorm.DB
	templateRepo *repository.TemplateRepository
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{
		db:           db,
		templateRepo: repository.NewTemplateRepository(db),
	}
}

func (s *TemplateService) List(publishedOnly bool) ([]models.Template, error) {
	return s.templateRepo.GetAll(publishedOnly)
}

func (s *TemplateService) Get(id uuid.UUID) (*models.Template, error) {
	template, err := s.templateRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

// Create writes the template, resolves tag names into rows (create-or-get),
// and attaches category/tag associations, all in one transaction.
func (s *TemplateService) Create(input CreateTemplateInput) (*models.Template, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.CreditsCost < 0 {
		return nil, ErrNegativeCredits
	}

	template := &models.Template{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		CreditsCost: input.CreditsCost,
		Published:   input.Published,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return err
		}

		categories, err := resolveCategories(tx, input.CategoryIDs)
		if err != nil {
			return err
		}

		tags, err := resolveTags(tx, input.TagIDs, input.TagNames)
		if err != nil {
			return err
		}

		if len(categories) > 0 {
			if err := tx.Model(template).Association("Categories").Append(categories); err != nil {
				return err
			}
		}
		if len(tags) > 0 {
			if err := tx.Model(template).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		logger.Log.Error("Failed to create template",
			zap.String("title", input.Title),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Template created",
		zap.String("template_id", template.ID.String()),
		zap.String("title", template.Title),
		zap.Int("credits_cost", template.CreditsCost),
	)

	return s.Get(template.ID)
}

// CreateAssets registers a template's asset set atomically: exactly one
// asset per kind, all three rows or none.
func (s *TemplateService) CreateAssets(templateID uuid.UUID, inputs []AssetInput) ([]models.Asset, error) {
	seen := make(map[models.AssetKind]bool, len(models.AssetKinds))
	for _, in := range inputs {
		if !models.ValidAssetKind(string(in.Kind)) || seen[in.Kind] {
			return nil, ErrIncompleteAssetSet
		}
		seen[in.Kind] = true
	}
	if len(seen) != len(models.AssetKinds) {
		return nil, ErrIncompleteAssetSet
	}

	var assets []models.Asset

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var template models.Template
		if err := tx.Where("id = ?", templateID).First(&template).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTemplateNotFound
			}
			return err
		}

		assetRepo := repository.NewAssetRepository(tx)
		for _, in := range inputs {
			asset := models.Asset{
				ID:         uuid.New(),
				TemplateID: templateID,
				Kind:       in.Kind,
				StorageKey: in.StorageKey,
				Mime:       in.Mime,
				Bytes:      in.Bytes,
			}
			if err := assetRepo.Create(&asset); err != nil {
				return err
			}
			assets = append(assets, asset)
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, ErrTemplateNotFound) {
			logger.Log.Error("Failed to create template assets",
				zap.String("template_id", templateID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	logger.Log.Info("Template assets registered",
		zap.String("template_id", templateID.String()),
		zap.Int("count", len(assets)),
	)
	return assets, nil
}

type UpdateTemplateInput struct {
	Title       *string
	Description *string
	CreditsCost *int
	Published   *bool
}

// Update mutates only the fields the caller provided.
func (s *TemplateService) Update(id uuid.UUID, input UpdateTemplateInput) (*models.Template, error) {
	updates := map[string]interface{}{}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CreditsCost != nil {
		if *input.CreditsCost < 0 {
			return nil, ErrNegativeCredits
		}
		updates["credits_cost"] = *input.CreditsCost
	}
	if input.Published != nil {
		updates["published"] = *input.Published
	}

	existing, err := s.templateRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTemplateNotFound
	}

	if len(updates) > 0 {
		if err := s.templateRepo.Update(id, updates); err != nil {
			return nil, err
		}
	}

	return s.Get(id)
}

func (s *TemplateService) Delete(id uuid.UUID) error {
	existing, err := s.templateRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTemplateNotFound
	}

	if err := s.templateRepo.Delete(id); err != nil {
		return err
	}

	logger.Log.Info("Template deleted",
		zap.String("template_id", id.String()),
	)
	return nil
}

func resolveCategories(tx *gorm.DB, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, ErrCategoryNotFound
	}
	return categories, nil
}

// resolveTags collects tags by id and creates-or-gets tags by name inside
// the caller's transaction.
func resolveTags(tx *gorm.DB, ids []uuid.UUID, names []string) ([]models.Tag, error) {
	var tags []models.Tag

	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
			return nil, err
		}
		if len(tags) != len(ids) {
			return nil, ErrTagNotFound
		}
	}

	tagRepo := repository.NewTagRepository(tx)
	for _, name := range names {
		slug := utils.Slugify(name)
		if slug == "" {
			continue
		}

		existing, err := tagRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			tags = append(tags, *existing)
			continue
		}

		tag := models.Tag{ID: uuid.New(), Name: name, Slug: slug}
		if err := tagRepo.Create(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return dedupeTags(tags), nil
}

func dedupeTags(tags []models.Tag) []models.Tag {
	seen := make(map[uuid.UUID]bool, len(tags))
	out := tags[:0]
	for _, tag := range tags {
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		out = append(out, tag)
	}
	return out
}
