package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaterialType struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_material_type_external_id" json:"external_id"`

	Code      string `gorm:"type:text;not null;index" json:"code"`
	Name      string `gorm:"type:text;not null" json:"name"`
	ImageFile string `gorm:"type:text;not null;default:''" json:"image_file"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MaterialType) TableName() string { return "material_types" }
