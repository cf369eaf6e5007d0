package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openshelf/openshelf-backend/internal/domain"
)

func TestForCopy(t *testing.T) {
	tbl := DefaultTables()

	cases := map[string]string{
		CodeShelving: domain.CopyStatusAvailable,
		CodeOut:      domain.CopyStatusLoaned,
		CodeHold:     domain.CopyStatusReserved,
		CodeMending:  domain.CopyStatusDamaged,
		CodeLost:     domain.CopyStatusLost,
		CodeDiscard:  domain.CopyStatusOther,
		"??":         domain.CopyStatusAvailable,
	}
	for code, want := range cases {
		if got := tbl.ForCopy(code); got != want {
			t.Fatalf("ForCopy(%q): got %q want %q", code, got, want)
		}
	}
}

func TestForLoanOverdueDerivation(t *testing.T) {
	tbl := DefaultTables()
	due := time.Date(2026, 1, 10, 23, 59, 0, 0, time.UTC)

	after := due.Add(24 * time.Hour)
	if got := tbl.ForLoan(CodeOut, &due, after); got != domain.LoanStatusOverdue {
		t.Fatalf("past due: got %q", got)
	}

	before := due.Add(-24 * time.Hour)
	if got := tbl.ForLoan(CodeOut, &due, before); got != domain.LoanStatusActive {
		t.Fatalf("not yet due: got %q", got)
	}

	if got := tbl.ForLoan(CodeOut, nil, after); got != domain.LoanStatusActive {
		t.Fatalf("no due date: got %q", got)
	}
}

func TestForLoanDefaultsAndTerminals(t *testing.T) {
	tbl := DefaultTables()
	now := time.Now()

	if got := tbl.ForLoan(CodeShelving, nil, now); got != domain.LoanStatusReturned {
		t.Fatalf("returned: got %q", got)
	}
	if got := tbl.ForLoan(CodeHold, nil, now); got != domain.LoanStatusRequested {
		t.Fatalf("requested: got %q", got)
	}
	if got := tbl.ForLoan(CodeRejected, nil, now); got != domain.LoanStatusRejected {
		t.Fatalf("rejected: got %q", got)
	}
	if got := tbl.ForLoan("??", nil, now); got != domain.LoanStatusReturned {
		t.Fatalf("unknown: got %q", got)
	}
}

// The legacy tables reuse spellings with different meanings; the "in"
// code must stay a shelved copy in one vocabulary and a returned loan in
// the other.
func TestVocabulariesStaySeparate(t *testing.T) {
	tbl := DefaultTables()
	if got := tbl.ForCopy(CodeShelving); got != domain.CopyStatusAvailable {
		t.Fatalf("copy %q: got %q", CodeShelving, got)
	}
	if got := tbl.ForLoan(CodeShelving, nil, time.Now()); got != domain.LoanStatusReturned {
		t.Fatalf("loan %q: got %q", CodeShelving, got)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	data := "copy_status:\n  ref: other\nloan_status:\n  can: rejected\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}

	tbl := DefaultTables()
	if err := tbl.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	if got := tbl.ForCopy("ref"); got != domain.CopyStatusOther {
		t.Fatalf("override copy code: got %q", got)
	}
	if got := tbl.ForLoan("can", nil, time.Now()); got != domain.LoanStatusRejected {
		t.Fatalf("override loan code: got %q", got)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("loan_status:\n  x: overdue\n"), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	if err := tbl.LoadOverrides(bad); err == nil {
		t.Fatal("overdue is derived and must not be an override target")
	}
}
