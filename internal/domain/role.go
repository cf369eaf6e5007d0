package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleMember    = "member"
)

type Role struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:text;not null;uniqueIndex:idx_role_external_id" json:"external_id"`

	Name string `gorm:"type:text;not null;uniqueIndex:idx_role_name" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Role) TableName() string { return "roles" }
