package users

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf-backend/internal/data/repos/testutil"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
)

func TestUserRepoUpsertIdempotence(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewUserRepo(db, testutil.Logger(t))

	roleID := uuid.New()
	row := &types.User{
		ExternalID: "member_7",
		Username:   "100001",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Password:   "hash",
		RoleID:     roleID,
	}

	first, created, err := repo.Upsert(dbc, row)
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	again := &types.User{
		ExternalID: "member_7",
		Username:   "100001",
		FirstName:  "Ada",
		LastName:   "Byron",
		Password:   "hash",
		RoleID:     roleID,
	}
	second, created, err := repo.Upsert(dbc, again)
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity changed across upserts: %s vs %s", first.ID, second.ID)
	}

	n, err := repo.Count(dbc)
	if err != nil || n != 1 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}

	got, err := repo.GetByExternalID(dbc, "member_7")
	if err != nil || got == nil || got.LastName != "Byron" {
		t.Fatalf("GetByExternalID after update: got=%+v err=%v", got, err)
	}

	ok, err := repo.ExistsByExternalID(dbc, "member_7")
	if err != nil || !ok {
		t.Fatalf("ExistsByExternalID: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ExistsByExternalID(dbc, "member_8")
	if err != nil || ok {
		t.Fatalf("ExistsByExternalID missing row: ok=%v err=%v", ok, err)
	}
}

func TestRoleRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewRoleRepo(db, testutil.Logger(t))

	row := &types.Role{Name: types.RoleMember, ExternalID: "role_member"}
	first, created, err := repo.Upsert(dbc, row)
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	_, created, err = repo.Upsert(dbc, &types.Role{Name: types.RoleMember, ExternalID: "role_member"})
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}

	got, err := repo.GetByName(dbc, types.RoleMember)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("GetByName: got=%+v err=%v", got, err)
	}
}

func TestCategoryRepoUpsertUpdatesName(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewCategoryRepo(db, testutil.Logger(t))

	// The users stage creates a stub first; the categories stage fills the
	// description in through the same upsert.
	stub := &types.Category{ExternalID: "category_ad", Code: "ad", Name: "ad"}
	first, _, err := repo.Upsert(dbc, stub)
	if err != nil {
		t.Fatalf("stub upsert: %v", err)
	}

	full := &types.Category{ExternalID: "category_ad", Code: "ad", Name: "Adult"}
	second, created, err := repo.Upsert(dbc, full)
	if err != nil || created {
		t.Fatalf("full upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatal("category identity changed")
	}

	got, err := repo.GetByExternalID(dbc, "category_ad")
	if err != nil || got == nil || got.Name != "Adult" {
		t.Fatalf("GetByExternalID: got=%+v err=%v", got, err)
	}
}
