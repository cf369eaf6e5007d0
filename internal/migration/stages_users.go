package migration

import (
	"context"
	"fmt"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/identity"
)

func (e *Engine) importRoles(ctx context.Context) error {
	dbc := e.dbc(ctx)
	for _, name := range []string{types.RoleAdmin, types.RoleLibrarian, types.RoleMember} {
		row := &types.Role{Name: name, ExternalID: identity.Role(name)}
		row, _, err := e.roleRepo.Upsert(dbc, row)
		if err != nil {
			return fmt.Errorf("upsert role %s: %w", name, err)
		}
		e.roleIDs[name] = row.ID
	}
	return nil
}

// importUsers runs two passes, staff then members. Each pass carries its
// own progress label so the processed counter stays monotonic per label.
func (e *Engine) importUsers(ctx context.Context) error {
	err := e.forEachPage("users:staff", func(offset, limit int) (int, error) {
		rows, err := e.src.StaffPage(ctx, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, s := range rows {
			staff := s
			e.withRecord("users:staff", fmt.Sprintf("staff:%d", staff.Userid), func() error {
				return e.importStaff(ctx, staff)
			})
		}
		return len(rows), nil
	})
	if err != nil {
		return fmt.Errorf("staff pages: %w", err)
	}

	err = e.forEachPage("users:members", func(offset, limit int) (int, error) {
		rows, err := e.src.MembersPage(ctx, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, m := range rows {
			member := m
			e.withRecord("users:members", fmt.Sprintf("member:%d", member.Mbrid), func() error {
				return e.importMember(ctx, member)
			})
		}
		return len(rows), nil
	})
	if err != nil {
		return fmt.Errorf("member pages: %w", err)
	}
	return nil
}

func (e *Engine) importStaff(ctx context.Context, s legacy.Staff) error {
	dbc := e.dbc(ctx)

	role := types.RoleLibrarian
	if s.AdminFlag == "Y" {
		role = types.RoleAdmin
	}
	roleID, ok := e.roleIDs[role]
	if !ok {
		return fmt.Errorf("role %s not seeded", role)
	}

	// Legacy staff rows already carry a password hash; keep it. Rows with
	// an empty hash get the migration default like members do.
	pwd := s.Pwd
	if pwd == "" {
		pwd = e.defaultPwdHash
	}

	row := &types.User{
		ExternalID: identity.Staff(s.Userid),
		Username:   s.Username,
		Password:   pwd,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		RoleID:     roleID,
	}
	_, _, err := e.userRepo.Upsert(dbc, row)
	return err
}

func (e *Engine) importMember(ctx context.Context, m legacy.Member) error {
	dbc := e.dbc(ctx)

	roleID, ok := e.roleIDs[types.RoleMember]
	if !ok {
		return fmt.Errorf("role %s not seeded", types.RoleMember)
	}

	row := &types.User{
		ExternalID: identity.Member(m.Mbrid),
		Username:   m.Barcode,
		Email:      m.Email,
		Password:   e.defaultPwdHash,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Barcode:    m.Barcode,
		Address:    m.Address,
		Phone:      m.HomePhone,
		RoleID:     roleID,
	}

	// The classification lookup table imports in a later stage; create a
	// stub category now so the link lands, and let that stage fill in the
	// description through the same upsert.
	if m.Classification != "" {
		cat := &types.Category{
			ExternalID: identity.Category(m.Classification),
			Code:       m.Classification,
			Name:       m.Classification,
		}
		existing, err := e.categoryRepo.GetByExternalID(dbc, cat.ExternalID)
		if err != nil {
			return err
		}
		if existing == nil {
			existing, _, err = e.categoryRepo.Upsert(dbc, cat)
			if err != nil {
				return err
			}
		}
		row.CategoryID = &existing.ID
	}

	_, _, err := e.userRepo.Upsert(dbc, row)
	return err
}
