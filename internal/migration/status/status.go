// Package status translates the legacy status vocabularies into target
// domain states. Copy condition codes and loan status codes overlap in
// spelling but not in meaning ("in" marks both a shelved copy and a
// returned loan), so the two tables are kept strictly separate.
package status

import (
	"sort"
	"time"

	"github.com/openshelf/openshelf-backend/internal/domain"
)

// Legacy status codes shared by the copy snapshot and the history table.
const (
	CodeShelving = "in"
	CodeOut      = "out"
	CodeHold     = "hld"
	CodeCart     = "crt"
	CodeDiscard  = "dis"
	CodeLost     = "lst"
	CodeMending  = "mnd"
	CodeOnOrder  = "ord"
	CodeRejected = "rej"
)

// Tables holds the two lookup tables. Zero value is unusable; use
// DefaultTables.
type Tables struct {
	copy map[string]string
	loan map[string]string
}

func DefaultTables() *Tables {
	return &Tables{
		copy: map[string]string{
			CodeShelving: domain.CopyStatusAvailable,
			CodeOut:      domain.CopyStatusLoaned,
			CodeHold:     domain.CopyStatusReserved,
			CodeMending:  domain.CopyStatusDamaged,
			CodeLost:     domain.CopyStatusLost,
			CodeDiscard:  domain.CopyStatusOther,
			CodeOnOrder:  domain.CopyStatusOther,
			CodeCart:     domain.CopyStatusOther,
		},
		loan: map[string]string{
			CodeOut:      domain.LoanStatusActive,
			CodeShelving: domain.LoanStatusReturned,
			CodeHold:     domain.LoanStatusRequested,
			CodeRejected: domain.LoanStatusRejected,
		},
	}
}

// ForCopy maps a copy condition code. Unknown codes land on the shelf
// rather than failing the record.
func (t *Tables) ForCopy(code string) string {
	if s, ok := t.copy[code]; ok {
		return s
	}
	return domain.CopyStatusAvailable
}

// ForLoan maps a loan status code. An active loan whose due date has
// already passed is overdue; that is derived from the wall clock on
// every call, never cached, since a re-run can legitimately move an
// unchanged source row from active to overdue.
func (t *Tables) ForLoan(code string, dueDate *time.Time, now time.Time) string {
	s, ok := t.loan[code]
	if !ok {
		s = domain.LoanStatusReturned
	}
	if s == domain.LoanStatusActive && dueDate != nil && dueDate.Before(now) {
		return domain.LoanStatusOverdue
	}
	return s
}

// LoanCodes returns the history codes that denote a loan at all, for
// source-side filters that must mirror the loan stage.
func (t *Tables) LoanCodes() []string {
	codes := make([]string, 0, len(t.loan))
	for c := range t.loan {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
