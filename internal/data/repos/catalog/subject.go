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

type SubjectRepo interface {
	// Upsert resolves by name first, then by external id, so a term whose
	// stored name drifted still maps onto its original row instead of
	// tripping the unique name constraint.
	Upsert(dbc dbctx.Context, row *types.Subject) (*types.Subject, bool, error)
	GetByName(dbc dbctx.Context, name string) (*types.Subject, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.Subject, error)
	Count(dbc dbctx.Context) (int64, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{db: db, log: baseLog.With("repo", "SubjectRepo")}
}

func (r *subjectRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *subjectRepo) Upsert(dbc dbctx.Context, row *types.Subject) (*types.Subject, bool, error) {
	t := r.handle(dbc)

	existing, err := r.GetByName(dbc, row.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		existing, err = r.GetByExternalID(dbc, row.ExternalID)
		if err != nil {
			return nil, false, err
		}
	}
	if existing != nil {
		row.ID = existing.ID
		updates := map[string]interface{}{"name": row.Name, "external_id": row.ExternalID}
		return row, false, t.Model(&types.Subject{}).Where("id = ?", existing.ID).Updates(updates).Error
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
		found, err := r.GetByExternalID(dbc, row.ExternalID)
		if err != nil {
			return nil, false, err
		}
		if found == nil {
			return nil, false, gorm.ErrRecordNotFound
		}
		row.ID = found.ID
		return row, false, nil
	}
	return row, true, nil
}

func (r *subjectRepo) GetByName(dbc dbctx.Context, name string) (*types.Subject, error) {
	var out types.Subject
	err := r.handle(dbc).Where("name = ?", name).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subjectRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.Subject, error) {
	var out types.Subject
	err := r.handle(dbc).Where("external_id = ?", externalID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subjectRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Subject{}).Count(&n).Error
	return n, err
}
