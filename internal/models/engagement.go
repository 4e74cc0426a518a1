package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is a (user, template) junction row. Presence means "liked"; the
// aggregate count is derived from row count, never stored on the template.
type Like struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TemplateID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Download records the first download of a template by a user. The unique
// index makes repeat downloads a lookup, not a second insert.
type Download struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_downloads_user_template" json:"user_id"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_downloads_user_template" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
}
