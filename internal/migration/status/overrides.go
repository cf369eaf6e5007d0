package status

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openshelf/openshelf-backend/internal/domain"
)

type overrideFile struct {
	CopyStatus map[string]string `yaml:"copy_status"`
	LoanStatus map[string]string `yaml:"loan_status"`
}

var validCopy = map[string]bool{
	domain.CopyStatusAvailable: true,
	domain.CopyStatusLoaned:    true,
	domain.CopyStatusReserved:  true,
	domain.CopyStatusDamaged:   true,
	domain.CopyStatusLost:      true,
	domain.CopyStatusOther:     true,
}

var validLoan = map[string]bool{
	domain.LoanStatusRequested: true,
	domain.LoanStatusActive:    true,
	domain.LoanStatusReturned:  true,
	domain.LoanStatusRejected:  true,
}

// LoadOverrides merges site-local code mappings from the shared YAML
// mapping file. The two vocabularies stay separate even in overrides.
func (t *Tables) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read status overrides: %w", err)
	}
	var of overrideFile
	if err := yaml.Unmarshal(raw, &of); err != nil {
		return fmt.Errorf("parse status overrides: %w", err)
	}
	for code, target := range of.CopyStatus {
		if !validCopy[target] {
			return fmt.Errorf("status overrides: unknown copy status %q for code %q", target, code)
		}
		t.copy[code] = target
	}
	for code, target := range of.LoanStatus {
		if !validLoan[target] {
			return fmt.Errorf("status overrides: unknown loan status %q for code %q", target, code)
		}
		t.loan[code] = target
	}
	return nil
}
