package users

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type UserRepo interface {
	Upsert(dbc dbctx.Context, row *types.User) (*types.User, bool, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.User, error)
	ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error)
	Count(dbc dbctx.Context) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func userUpdates(row *types.User) map[string]interface{} {
	return map[string]interface{}{
		"username":    row.Username,
		"email":       row.Email,
		"password":    row.Password,
		"first_name":  row.FirstName,
		"last_name":   row.LastName,
		"barcode":     row.Barcode,
		"address":     row.Address,
		"phone":       row.Phone,
		"role_id":     row.RoleID,
		"category_id": row.CategoryID,
	}
}

func (r *userRepo) Upsert(dbc dbctx.Context, row *types.User) (*types.User, bool, error) {
	t := r.handle(dbc)

	var existing types.User
	err := t.Where("external_id = ?", row.ExternalID).First(&existing).Error
	if err == nil {
		row.ID = existing.ID
		return row, false, t.Model(&types.User{}).Where("id = ?", existing.ID).Updates(userUpdates(row)).Error
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
		return row, false, t.Model(&types.User{}).Where("id = ?", existing.ID).Updates(userUpdates(row)).Error
	}
	return row, true, nil
}

func (r *userRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.User, error) {
	var out types.User
	err := r.handle(dbc).Where("external_id = ?", externalID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) ExistsByExternalID(dbc dbctx.Context, externalID string) (bool, error) {
	var n int64
	err := r.handle(dbc).Model(&types.User{}).Where("external_id = ?", externalID).Count(&n).Error
	return n > 0, err
}

func (r *userRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := r.handle(dbc).Model(&types.User{}).Count(&n).Error
	return n, err
}
