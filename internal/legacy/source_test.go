package legacy_test

import (
	"context"
	"testing"

	"github.com/openshelf/openshelf-backend/internal/data/repos/testutil"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/extract"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

func TestSubjectTermQueriesFilterBySubfield(t *testing.T) {
	ctx := context.Background()
	db := testutil.SourceDB(t)
	src := legacy.NewSourceServiceFromDB(db, logger.NewNop())

	// Only the $a sub-field carries a term; $v and $x are subdivisions of
	// the same tag and must not leak into the subject population.
	testutil.SeedBiblio(t, db, 1, "Beloved", []legacy.BiblioField{
		{Tag: "650", SubfieldCd: "a", FieldData: "African American women"},
		{Tag: "650", SubfieldCd: "v", FieldData: "Fiction"},
		{Tag: "650", SubfieldCd: "x", FieldData: "History"},
		{Tag: "651", SubfieldCd: "a", FieldData: "Ohio"},
	})

	pairs := extract.DefaultTagMap().SubjectTags()
	terms, err := src.SubjectTermsPage(ctx, pairs, 0, 100)
	if err != nil {
		t.Fatalf("SubjectTermsPage: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("terms: %v", terms)
	}
	for _, term := range terms {
		if term == "Fiction" || term == "History" {
			t.Fatalf("subdivision leaked into terms: %v", terms)
		}
	}

	n, err := src.CountDistinctSubjectTerms(ctx, pairs)
	if err != nil {
		t.Fatalf("CountDistinctSubjectTerms: %v", err)
	}
	if n != 2 {
		t.Fatalf("distinct terms: got %d want 2", n)
	}
}

func TestSubjectTermQueriesEmptyPairs(t *testing.T) {
	ctx := context.Background()
	db := testutil.SourceDB(t)
	src := legacy.NewSourceServiceFromDB(db, logger.NewNop())

	terms, err := src.SubjectTermsPage(ctx, nil, 0, 100)
	if err != nil || len(terms) != 0 {
		t.Fatalf("SubjectTermsPage: terms=%v err=%v", terms, err)
	}
	n, err := src.CountDistinctSubjectTerms(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("CountDistinctSubjectTerms: n=%d err=%v", n, err)
	}
}
