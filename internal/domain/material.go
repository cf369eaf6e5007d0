package domain

import (
	"time"

	"github.com/google/uuid"
)

type Material struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_material_external_id" json:"external_id"`

	Title      string `gorm:"type:text;not null" json:"title"`
	Author     string `gorm:"type:text;not null;default:''" json:"author"`
	CallNumber string `gorm:"type:text;not null;default:''" json:"call_number"`

	ISBN             string   `gorm:"type:text;not null;default:''" json:"isbn"`
	Publisher        string   `gorm:"type:text;not null;default:''" json:"publisher"`
	PublicationPlace string   `gorm:"type:text;not null;default:''" json:"publication_place"`
	PublicationYear  *int     `json:"publication_year,omitempty"`
	Language         string   `gorm:"type:text;not null;default:''" json:"language"`
	Country          string   `gorm:"type:text;not null;default:''" json:"country"`
	Pages            *int     `json:"pages,omitempty"`
	Price            *float64 `json:"price,omitempty"`
	Dimensions       string   `gorm:"type:text;not null;default:''" json:"dimensions"`
	Description      string   `gorm:"type:text;not null;default:''" json:"description"`

	// Quantity mirrors the number of copies attached to this material and
	// is recomputed after every copy import.
	Quantity int `gorm:"not null;default:0" json:"quantity"`

	CollectionID   *uuid.UUID `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	MaterialTypeID *uuid.UUID `gorm:"type:uuid;index" json:"material_type_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string { return "materials" }

// MaterialSubject joins materials to subjects. The pair is unique so
// re-associating an already linked subject is a no-op, and a material's
// rows are fully replaced on re-import.
type MaterialSubject struct {
	MaterialID uuid.UUID `gorm:"type:uuid;primaryKey" json:"material_id"`
	SubjectID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"subject_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MaterialSubject) TableName() string { return "material_subjects" }
