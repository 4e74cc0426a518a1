package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether s is one of the two roles this system knows about.
func ValidRole(s string) bool {
	return s == string(RoleUser) || s == string(RoleAdmin)
}

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"type:varchar(100)" json:"name"`
	Image      string    `gorm:"type:text" json:"image"`
	Role       Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Provider   string    `gorm:"type:varchar(50)" json:"provider"`
	ProviderID string    `gorm:"type:varchar(100)" json:"provider_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
