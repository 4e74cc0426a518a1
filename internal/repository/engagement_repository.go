package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sceneyard/sceneyard/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Exists(userID, templateID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Count(&count).Error
	return count > 0, err
}

func (r *LikeRepository) Create(like *models.Like) error {
	return r.db.Create(like).Error
}

func (r *LikeRepository) Delete(userID, templateID uuid.UUID) error {
	return r.db.
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Delete(&models.Like{}).Error
}

// CountForTemplate derives the aggregate like count from row count.
func (r *LikeRepository) CountForTemplate(templateID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

func (r *LikeRepository) TemplateIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("template_id", &ids).Error
	return ids, err
}

type DownloadRepository struct {
	db *gorm.DB
}

func NewDownloadRepository(db *gorm.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

func (r *DownloadRepository) Create(download *models.Download) error {
	return r.db.Create(download).Error
}

func (r *DownloadRepository) GetByUserAndTemplate(userID, templateID uuid.UUID) (*models.Download, error) {
	var download models.Download
	err := r.db.
		Where("user_id = ? AND template_id = ?", userID, templateID).
		First(&download).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &download, nil
}

func (r *DownloadRepository) GetForUser(userID uuid.UUID) ([]models.Download, error) {
	var downloads []models.Download
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&downloads).Error
	return downloads, err
}
