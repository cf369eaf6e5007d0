package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_user_external_id" json:"external_id"`

	Username  string `gorm:"type:text;not null;index" json:"username"`
	Email     string `gorm:"type:text;not null;default:''" json:"email"`
	Password  string `gorm:"type:text;not null" json:"-"`
	FirstName string `gorm:"type:text;not null;default:''" json:"first_name"`
	LastName  string `gorm:"type:text;not null;default:''" json:"last_name"`
	Barcode   string `gorm:"type:text;not null;default:'';index" json:"barcode"`
	Address   string `gorm:"type:text;not null;default:''" json:"address"`
	Phone     string `gorm:"type:text;not null;default:''" json:"phone"`

	RoleID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"role_id"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
