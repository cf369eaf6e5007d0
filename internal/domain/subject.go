package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subject is a deduplicated taxonomy term. Name is unique; ExternalID is
// derived from the name so a term keeps its identity across runs even if
// the stored name is later touched up.
type Subject struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_subject_external_id" json:"external_id"`

	Name string `gorm:"type:text;not null;uniqueIndex:idx_subject_name" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Subject) TableName() string { return "subjects" }
