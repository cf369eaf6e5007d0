package domain

import (
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_collection_external_id" json:"external_id"`

	Code           string `gorm:"type:text;not null;index" json:"code"`
	Name           string `gorm:"type:text;not null" json:"name"`
	LoanPeriodDays int    `gorm:"not null;default:0" json:"loan_period_days"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Collection) TableName() string { return "collections" }
