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

type MaterialRepo interface {
	Upsert(dbc dbctx.Context, row *types.Material) (*types.Material, bool, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.Material, error)
	ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error)
	Count(dbc dbctx.Context) (int64, error)

	// ReplaceSubjects swaps the material's subject associations for the
	// given set, deduplicated, so a source-side removal cannot leave a
	// stale link behind.
	ReplaceSubjects(dbc dbctx.Context, materialID uuid.UUID, subjectIDs []uuid.UUID) error

	// RecomputeQuantity re-derives quantity from the copies table.
	RecomputeQuantity(dbc dbctx.Context, materialID uuid.UUID) (int64, error)
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func materialUpdates(row *types.Material) map[string]interface{} {
	return map[string]interface{}{
		"title":             row.Title,
		"author":            row.Author,
		"call_number":       row.CallNumber,
		"isbn":              row.ISBN,
		"publisher":         row.Publisher,
		"publication_place": row.PublicationPlace,
		"publication_year":  row.PublicationYear,
		"language":          row.Language,
		"country":           row.Country,
		"pages":             row.Pages,
		"price":             row.Price,
		"dimensions":        row.Dimensions,
		"description":       row.Description,
		"collection_id":     row.CollectionID,
		"material_type_id":  row.MaterialTypeID,
	}
}

func (r *materialRepo) Upsert(dbc dbctx.Context, row *types.Material) (*types.Material, bool, error) {
	t := r.handle(dbc)

	var existing types.Material
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		row.Quantity = existing.Quantity
		return row, false, t.Model(&types.Material{}).Where("id = ?", existing.ID).Updates(materialUpdates(row)).Error
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
		return row, false, t.Model(&types.Material{}).Where("id = ?", existing.ID).Updates(materialUpdates(row)).Error
	}
	return row, true, nil
}

func (r *materialRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.Material, error) {
	var out types.Material
	err := r.handle(dbc).Where("external_id = ?", externalID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepo) ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Material{}).Where("external_id = ?", externalID).Count(&n).Error
	return n > 0, err
}

func (r *materialRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Material{}).Count(&n).Error
	return n, err
}

func (r *materialRepo) ReplaceSubjects(dbc dbctx.Context, materialID uuid.UUID, subjectIDs []uuid.UUID) error {
	t := r.handle(dbc)
	if err := t.Where("material_id = ?", materialID).Delete(&types.MaterialSubject{}).Error; err != nil {
		return err
	}
	seen := map[uuid.UUID]bool{}
	rows := make([]types.MaterialSubject, 0, len(subjectIDs))
	for _, sid := range subjectIDs {
		if seen[sid] {
			continue
		}
		seen[sid] = true
		rows = append(rows, types.MaterialSubject{MaterialID: materialID, SubjectID: sid})
	}
	if len(rows) == 0 {
		return nil
	}
	return t.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *materialRepo) RecomputeQuantity(dbc dbctx.Context, materialID uuid.UUID) (int64, error) {
	t := r.handle(dbc)
	var n int64
	if err := t.Model(&types.Copy{}).Where("material_id = ?", materialID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, t.Model(&types.Material{}).Where("id = ?", materialID).Update("quantity", n).Error
}
