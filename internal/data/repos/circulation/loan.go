package circulation

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type LoanRepo interface {
	Upsert(dbc dbctx.Context, row *types.Loan) (*types.Loan, bool, error)
	ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error)
	Count(dbc dbctx.Context) (int64, error)
	CountByStatuses(dbc dbctx.Context, statuses []string) (int64, error)
}

type loanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoanRepo(db *gorm.DB, baseLog *logger.Logger) LoanRepo {
	return &loanRepo{db: db, log: baseLog.With("repo", "LoanRepo")}
}

func (r *loanRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func loanUpdates(row *types.Loan) map[string]interface{} {
	return map[string]interface{}{
		"material_id": row.MaterialID,
		"copy_id":     row.CopyID,
		"user_id":     row.UserID,
		"status":      row.Status,
		"loan_date":   row.LoanDate,
		"due_date":    row.DueDate,
		"return_date": row.ReturnDate,
	}
}

func (r *loanRepo) Upsert(dbc dbctx.Context, row *types.Loan) (*types.Loan, bool, error) {
	t := r.handle(dbc)

	var existing types.Loan
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return row, false, t.Model(&types.Loan{}).Where("id = ?", existing.ID).Updates(loanUpdates(row)).Error
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
		return row, false, t.Model(&types.Loan{}).Where("id = ?", existing.ID).Updates(loanUpdates(row)).Error
	}
	return row, true, nil
}

func (r *loanRepo) ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Loan{}).Where("external_id = ?", externalID).Count(&n).Error
	return n > 0, err
}

func (r *loanRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Loan{}).Count(&n).Error
	return n, err
}

func (r *loanRepo) CountByStatuses(dbc dbctx.Context, statuses []string) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.Loan{}).Where("status IN ?", statuses).Count(&n).Error
	return n, err
}
