package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is the member classification carried over from the legacy
// patron schema (adult, juvenile, staff and so on).
type Category struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_category_external_id" json:"external_id"`

	Code string `gorm:"type:text;not null;index" json:"code"`
	Name string `gorm:"type:text;not null" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }
