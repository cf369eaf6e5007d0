package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoanStatusRequested = "requested"
	LoanStatusActive    = "active"
	LoanStatusOverdue   = "overdue"
	LoanStatusReturned  = "returned"
	LoanStatusRejected  = "rejected"
)

type Loan struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_loan_external_id" json:"external_id"`

	MaterialID uuid.UUID  `gorm:"type:uuid;not null;index" json:"material_id"`
	CopyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"copy_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	Status     string     `gorm:"type:text;not null;index" json:"status"`
	LoanDate   time.Time  `gorm:"not null" json:"loan_date"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }
