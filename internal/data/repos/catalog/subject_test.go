package catalog

import (
	"context"
	"testing"

	"github.com/openshelf/openshelf-backend/internal/data/repos/testutil"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
)

func TestSubjectRepoResolveByName(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewSubjectRepo(db, testutil.Logger(t))

	first, created, err := repo.Upsert(dbc, &types.Subject{Name: "History", ExternalID: "topic_a"})
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	// Same name under a different derived key still resolves to the
	// existing row.
	second, created, err := repo.Upsert(dbc, &types.Subject{Name: "History", ExternalID: "topic_b"})
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatal("name match did not reuse the existing subject")
	}

	n, err := repo.Count(dbc)
	if err != nil || n != 1 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
}

func TestSubjectRepoResolveByExternalID(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewSubjectRepo(db, testutil.Logger(t))

	first, _, err := repo.Upsert(dbc, &types.Subject{Name: "Old Name", ExternalID: "topic_x"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, created, err := repo.Upsert(dbc, &types.Subject{Name: "New Name", ExternalID: "topic_x"})
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatal("external id match did not reuse the existing subject")
	}
	got, err := repo.GetByName(dbc, "New Name")
	if err != nil || got == nil {
		t.Fatalf("renamed subject not found: got=%v err=%v", got, err)
	}
	if stale, _ := repo.GetByName(dbc, "Old Name"); stale != nil {
		t.Fatal("old name still resolves")
	}
}
