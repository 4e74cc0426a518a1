package repository

import (
	"github.com/sceneyard/sceneyard/internal/models"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

func (r *ContactRepository) GetAll() ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.db.Order("created_at DESC").Find(&messages).Error
	return messages, err
}
