package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type LibraryInfoRepo interface {
	Upsert(dbc dbctx.Context, row *types.LibraryInfo) (*types.LibraryInfo, bool, error)
	Count(dbc dbctx.Context) (int64, error)
}

type libraryInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryInfoRepo(db *gorm.DB, baseLog *logger.Logger) LibraryInfoRepo {
	return &libraryInfoRepo{db: db, log: baseLog.With("repo", "LibraryInfoRepo")}
}

func (r *libraryInfoRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *libraryInfoRepo) Upsert(dbc dbctx.Context, row *types.LibraryInfo) (*types.LibraryInfo, bool, error) {
	t := r.handle(dbc)
	updates := map[string]interface{}{
		"name":     row.Name,
		"phone":    row.Phone,
		"hours":    row.Hours,
		"settings": row.Settings,
	}

	var existing types.LibraryInfo
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return row, false, t.Model(&types.LibraryInfo{}).Where("id = ?", existing.ID).Updates(updates).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	res := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		if err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error; err != nil {
			return nil, false, err
		}
		row.ID = existing.ID
		return row, false, t.Model(&types.LibraryInfo{}).Where("id = ?", existing.ID).Updates(updates).Error
	}
	return row, true, nil
}

func (r *libraryInfoRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.LibraryInfo{}).Count(&n).Error
	return n, err
}
