package models

import (
	"time"

	"github.com/google/uuid"
)

type AssetKind string

const (
	AssetKindPreview   AssetKind = "preview"
	AssetKindThumbnail AssetKind = "thumbnail"
	AssetKindDownload  AssetKind = "download"
)

// AssetKinds lists every kind a template must carry exactly once.
var AssetKinds = []AssetKind{AssetKindPreview, AssetKindThumbnail, AssetKindDownload}

// ValidAssetKind reports whether s names a known asset kind.
func ValidAssetKind(s string) bool {
	switch AssetKind(s) {
	case AssetKindPreview, AssetKindThumbnail, AssetKindDownload:
		return true
	}
	return false
}

type Template struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CreditsCost int        `gorm:"not null;default:0" json:"credits_cost"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	Categories  []Category `gorm:"many2many:template_categories" json:"categories,omitempty"`
	Tags        []Tag      `gorm:"many2many:template_tags" json:"tags,omitempty"`
	Assets      []Asset    `gorm:"foreignKey:TemplateID" json:"assets,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Asset is one stored object belonging to a template. StorageKey is
// namespaced by kind ("downloads/{id}.{ext}") so a key can never silently
// overwrite an object of another kind.
type Asset struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;index" json:"template_id"`
	Kind       AssetKind `gorm:"type:varchar(20);not null" json:"kind"`
	StorageKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"storage_key"`
	Mime       string    `gorm:"type:varchar(100)" json:"mime"`
	Bytes      int64     `gorm:"not null;default:0" json:"bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
