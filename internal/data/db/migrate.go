package db

import (
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&types.Role{},
		&types.User{},
		&types.Category{},

		// Catalog lookups
		&types.Collection{},
		&types.MaterialType{},
		&types.Subject{},

		// Catalog
		&types.Material{},
		&types.MaterialSubject{},
		&types.Copy{},

		// Circulation
		&types.Loan{},

		// Auxiliary
		&types.LibraryInfo{},
	)
}
