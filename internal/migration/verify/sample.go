package verify

import (
	"context"
	"fmt"

	"github.com/openshelf/openshelf-backend/internal/migration/identity"
	"github.com/openshelf/openshelf-backend/internal/migration/status"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
)

// Sampling scans a bounded prefix of the source table, derives each
// row's external id, and probes the target for it. Keys that are really
// absent come back as samples; everything present means the divergence
// is a formula mismatch, not missing rows.

func (v *Verifier) sampleUsers(ctx context.Context) ([]string, error) {
	dbc := dbctx.New(ctx)
	var missing []string

	staff, err := v.src.StaffPage(ctx, 0, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, s := range staff {
		if len(missing) >= sampleLimit {
			return missing, nil
		}
		ok, err := v.userRepo.ExistsByExternalID(dbc, identity.Staff(s.Userid))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("staff:%d", s.Userid))
		}
	}

	members, err := v.src.MembersPage(ctx, 0, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if len(missing) >= sampleLimit {
			return missing, nil
		}
		ok, err := v.userRepo.ExistsByExternalID(dbc, identity.Member(m.Mbrid))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("member:%d", m.Mbrid))
		}
	}
	return missing, nil
}

func (v *Verifier) sampleMaterials(ctx context.Context) ([]string, error) {
	dbc := dbctx.New(ctx)
	var missing []string

	rows, err := v.src.BibliosPage(ctx, 0, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, b := range rows {
		if len(missing) >= sampleLimit {
			break
		}
		ok, err := v.materialRepo.ExistsByExternalID(dbc, identity.Material(b.Bibid))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("biblio:%d", b.Bibid))
		}
	}
	return missing, nil
}

func (v *Verifier) sampleCopies(ctx context.Context) ([]string, error) {
	dbc := dbctx.New(ctx)
	var missing []string

	rows, err := v.src.CopiesPage(ctx, 0, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range rows {
		if len(missing) >= sampleLimit {
			break
		}
		ok, err := v.copyRepo.ExistsByExternalID(dbc, identity.Copy(c.Bibid, c.Copyid))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("copy:%d_%d", c.Bibid, c.Copyid))
		}
	}
	return missing, nil
}

func (v *Verifier) sampleLoans(ctx context.Context) ([]string, error) {
	dbc := dbctx.New(ctx)
	var missing []string

	hist, err := v.src.StatusHistoryPage(ctx, v.statuses.LoanCodes(), 0, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, h := range hist {
		if len(missing) >= sampleLimit {
			return missing, nil
		}
		if h.StatusBegin == nil {
			missing = append(missing, fmt.Sprintf("hist:%d_%d (no begin date)", h.Bibid, h.Copyid))
			continue
		}
		ok, err := v.loanRepo.ExistsByExternalID(dbc, identity.Loan(h.Bibid, h.Copyid, *h.StatusBegin))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("hist:%d_%d", h.Bibid, h.Copyid))
		}
	}

	snaps, err := v.src.CheckedOutCopiesPage(ctx, status.CodeOut, 0, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range snaps {
		if len(missing) >= sampleLimit {
			return missing, nil
		}
		if c.StatusBegin == nil {
			missing = append(missing, fmt.Sprintf("snapshot:%d_%d (no begin date)", c.Bibid, c.Copyid))
			continue
		}
		ok, err := v.loanRepo.ExistsByExternalID(dbc, identity.Loan(c.Bibid, c.Copyid, *c.StatusBegin))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("snapshot:%d_%d", c.Bibid, c.Copyid))
		}
	}
	return missing, nil
}
