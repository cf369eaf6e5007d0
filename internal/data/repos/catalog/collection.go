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

type CollectionRepo interface {
	Upsert(dbc dbctx.Context, row *types.Collection) (*types.Collection, bool, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.Collection, error)
	Count(dbc dbctx.Context) (int64, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{db: db, log: baseLog.With("repo", "CollectionRepo")}
}

func (r *collectionRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *collectionRepo) Upsert(dbc dbctx.Context, row *types.Collection) (*types.Collection, bool, error) {
	t := r.handle(dbc)
	updates := map[string]interface{}{
		"code":             row.Code,
		"name":             row.Name,
		"loan_period_days": row.LoanPeriodDays,
	}

	var existing types.Collection
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return row, false, t.Model(&types.Collection{}).Where("id = ?", existing.ID).Updates(updates).Error
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
		return row, false, t.Model(&types.Collection{}).Where("id = ?", existing.ID).Updates(updates).Error
	}
	return row, true, nil
}

func (r *collectionRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.Collection, error) {
	var out types.Collection
	err := r.handle(dbc).Where("external_id = ?", externalID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *collectionRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Collection{}).Count(&n).Error
	return n, err
}
