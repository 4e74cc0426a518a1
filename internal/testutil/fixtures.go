package testutil

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/utils"
)

// CreateTestUser inserts a user with the given role.
func CreateTestUser(db *gorm.DB, email string, role models.Role) (*models.User, error) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     "Test User",
		Role:     role,
		Provider: "oauth",
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTestCategory inserts a category with a derived slug.
func CreateTestCategory(db *gorm.DB, name string) (*models.Category, error) {
	category := &models.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: utils.Slugify(name),
	}
	if err := db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateTestTemplate inserts a published template.
func CreateTestTemplate(db *gorm.DB, title string, creditsCost int) (*models.Template, error) {
	template := &models.Template{
		ID:          uuid.New(),
		Title:       title,
		CreditsCost: creditsCost,
		Published:   true,
	}
	if err := db.Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

// CreateTestAsset inserts an asset of the given kind for a template.
func CreateTestAsset(db *gorm.DB, templateID uuid.UUID, kind models.AssetKind, key string) (*models.Asset, error) {
	asset := &models.Asset{
		ID:         uuid.New(),
		TemplateID: templateID,
		Kind:       kind,
		StorageKey: key,
		Mime:       "application/octet-stream",
		Bytes:      1024,
	}
	if err := db.Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}
