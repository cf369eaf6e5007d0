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

type CopyRepo interface {
	Upsert(dbc dbctx.Context, row *types.Copy) (*types.Copy, bool, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.Copy, error)
	ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error)
	DeleteByMaterialExceptExternalIDs(dbc dbctx.Context, materialID uuid.UUID, keep []string) error
	Count(dbc dbctx.Context) (int64, error)
}

type copyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCopyRepo(db *gorm.DB, baseLog *logger.Logger) CopyRepo {
	return &copyRepo{db: db, log: baseLog.With("repo", "CopyRepo")}
}

func (r *copyRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func copyUpdates(row *types.Copy) map[string]interface{} {
	return map[string]interface{}{
		"barcode":     row.Barcode,
		"status":      row.Status,
		"material_id": row.MaterialID,
		"due_date":    row.DueDate,
	}
}

func (r *copyRepo) Upsert(dbc dbctx.Context, row *types.Copy) (*types.Copy, bool, error) {
	t := r.handle(dbc)

	var existing types.Copy
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return row, false, t.Model(&types.Copy{}).Where("id = ?", existing.ID).Updates(copyUpdates(row)).Error
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
		return row, false, t.Model(&types.Copy{}).Where("id = ?", existing.ID).Updates(copyUpdates(row)).Error
	}
	return row, true, nil
}

func (r *copyRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.Copy, error) {
	var out types.Copy
	err := r.handle(dbc).Where("external_id = ?", externalID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *copyRepo) ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Copy{}).Where("external_id = ?", externalID).Count(&n).Error
	return n > 0, err
}

// DeleteByMaterialExceptExternalIDs drops copies no longer present in the
// source so the quantity invariant holds after a source-side removal.
func (r *copyRepo) DeleteByMaterialExceptExternalIDs(dbc dbctx.Context, materialID uuid.UUID, keep []string) error {
	q := r.handle(dbc).Where("material_id = ?", materialID)
	if len(keep) > 0 {
		q = q.Where("external_id NOT IN ?", keep)
	}
	return q.Delete(&types.Copy{}).Error
}

func (r *copyRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Copy{}).Count(&n).Error
	return n, err
}
