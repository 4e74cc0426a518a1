package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sceneyard/sceneyard/internal/models"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(template *models.Template) error {
	return r.db.Create(template).Error
}

// GetAll returns templates newest first. publishedOnly hides drafts from the
// public listing; admins pass false.
func (r *TemplateRepository) GetAll(publishedOnly bool) ([]models.Template, error) {
	var templates []models.Template
	query := r.db.
		Preload("Categories").
		Preload("Tags").
		Preload("Assets").
		Order("created_at DESC")

	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	err := query.Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) GetByID(id uuid.UUID) (*models.Template, error) {
	var template models.Template
	err := r.db.
		Preload("Categories").
		Preload("Tags").
		Preload("Assets").
		Where("id = ?", id).
		First(&template).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &template, nil
}

// GetByIDs loads full template rows for a set of ids (liked-templates view).
func (r *TemplateRepository) GetByIDs(ids []uuid.UUID) ([]models.Template, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var templates []models.Template
	err := r.db.
		Preload("Categories").
		Preload("Tags").
		Preload("Assets").
		Where("id IN ?", ids).
		Find(&templates).Error
	return templates, err
}

// Update applies partial field updates; callers pass only the columns that
// actually change.
func (r *TemplateRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	return r.db.Model(&models.Template{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes a template along with its assets, engagement rows, and
// junction rows.
func (r *TemplateRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM template_categories WHERE template_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM template_tags WHERE template_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Asset{}, "template_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Like{}, "template_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Download{}, "template_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Template{}, "id = ?", id).Error
	})
}

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(asset *models.Asset) error {
	return r.db.Create(asset).Error
}

// GetByStorageKey resolves an asset from its object key. Used to map a
// requested stream key back to the template that owns it.
func (r *AssetRepository) GetByStorageKey(key string) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.Where("storage_key = ?", key).First(&asset).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &asset, nil
}

func (r *AssetRepository) GetByTemplateAndKind(templateID uuid.UUID, kind models.AssetKind) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.Where("template_id = ? AND kind = ?", templateID, kind).First(&asset).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &asset, nil
}
