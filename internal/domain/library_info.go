package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LibraryInfo holds the single settings row. Legacy settings columns with
// no dedicated field land in Settings so nothing is silently dropped.
type LibraryInfo struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_library_info_external_id" json:"external_id"`

	Name  string `gorm:"type:text;not null;default:''" json:"name"`
	Phone string `gorm:"type:text;not null;default:''" json:"phone"`
	Hours string `gorm:"type:text;not null;default:''" json:"hours"`

	Settings datatypes.JSON `gorm:"type:jsonb" json:"settings"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LibraryInfo) TableName() string { return "library_info" }
