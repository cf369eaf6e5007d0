package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CopyStatusAvailable = "available"
	CopyStatusLoaned    = "loaned"
	CopyStatusReserved  = "reserved"
	CopyStatusDamaged   = "damaged"
	CopyStatusLost      = "lost"
	CopyStatusOther     = "other"
)

type Copy struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_copy_external_id" json:"external_id"`

	Barcode string `gorm:"type:text;not null;default:'';index" json:"barcode"`
	Status  string `gorm:"type:text;not null;default:'available';index" json:"status"`

	MaterialID uuid.UUID  `gorm:"type:uuid;not null;index" json:"material_id"`
	DueDate    *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Copy) TableName() string { return "copies" }
