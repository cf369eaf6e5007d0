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

type MaterialTypeRepo interface {
	Upsert(dbc dbctx.Context, row *types.MaterialType) (*types.MaterialType, bool, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.MaterialType, error)
	Count(dbc dbctx.Context) (int64, error)
}

type materialTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialTypeRepo(db *gorm.DB, baseLog *logger.Logger) MaterialTypeRepo {
	return &materialTypeRepo{db: db, log: baseLog.With("repo", "MaterialTypeRepo")}
}

func (r *materialTypeRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *materialTypeRepo) Upsert(dbc dbctx.Context, row *types.MaterialType) (*types.MaterialType, bool, error) {
	t := r.handle(dbc)
	updates := map[string]interface{}{
		"code":       row.Code,
		"name":       row.Name,
		"image_file": row.ImageFile,
	}

	var existing types.MaterialType
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return row, false, t.Model(&types.MaterialType{}).Where("id = ?", existing.ID).Updates(updates).Error
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
		return row, false, t.Model(&types.MaterialType{}).Where("id = ?", existing.ID).Updates(updates).Error
	}
	return row, true, nil
}

func (r *materialTypeRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.MaterialType, error) {
	var out types.MaterialType
	err := r.handle(dbc).Where("external_id = ?", externalID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialTypeRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.MaterialType{}).Count(&n).Error
	return n, err
}
