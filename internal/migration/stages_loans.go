package migration

import (
	"context"
	"fmt"
	"time"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/identity"
	"github.com/openshelf/openshelf-backend/internal/migration/status"
)

// importLoans translates the two source populations: historical
// loan-status rows and the live checked-out snapshot. The external id
// keys on (bibid, copyid, begin timestamp), so a snapshot row that also
// appears in history collapses into one loan.
func (e *Engine) importLoans(ctx context.Context) error {
	codes := e.statuses.LoanCodes()

	err := e.forEachPage("loans:history", func(offset, limit int) (int, error) {
		rows, err := e.src.StatusHistoryPage(ctx, codes, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, h := range rows {
			hist := h
			e.withRecord("loans:history", fmt.Sprintf("hist:%d_%d", hist.Bibid, hist.Copyid), func() error {
				return e.importLoanRow(ctx, hist)
			})
		}
		return len(rows), nil
	})
	if err != nil {
		return fmt.Errorf("history pages: %w", err)
	}

	err = e.forEachPage("loans:snapshot", func(offset, limit int) (int, error) {
		rows, err := e.src.CheckedOutCopiesPage(ctx, status.CodeOut, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, c := range rows {
			snap := c
			e.withRecord("loans:snapshot", fmt.Sprintf("snapshot:%d_%d", snap.Bibid, snap.Copyid), func() error {
				return e.importLoanRow(ctx, legacy.StatusHistory{
					Bibid:       snap.Bibid,
					Copyid:      snap.Copyid,
					StatusCd:    snap.StatusCd,
					StatusBegin: snap.StatusBegin,
					DueBack:     snap.DueBack,
					Mbrid:       snap.Mbrid,
				})
			})
		}
		return len(rows), nil
	})
	if err != nil {
		return fmt.Errorf("snapshot pages: %w", err)
	}
	return nil
}

func (e *Engine) importLoanRow(ctx context.Context, h legacy.StatusHistory) error {
	dbc := e.dbc(ctx)

	if h.StatusBegin == nil {
		return fmt.Errorf("missing status_begin_dt")
	}

	material, err := e.materialRepo.GetByExternalID(dbc, identity.Material(h.Bibid))
	if err != nil {
		return err
	}
	if material == nil {
		return fmt.Errorf("material %d not migrated", h.Bibid)
	}
	copyRow, err := e.copyRepo.GetByExternalID(dbc, identity.Copy(h.Bibid, h.Copyid))
	if err != nil {
		return err
	}
	if copyRow == nil {
		return fmt.Errorf("copy %d_%d not migrated", h.Bibid, h.Copyid)
	}

	row := &types.Loan{
		ExternalID: identity.Loan(h.Bibid, h.Copyid, *h.StatusBegin),
		MaterialID: material.ID,
		CopyID:     copyRow.ID,
		Status:     e.statuses.ForLoan(h.StatusCd, h.DueBack, time.Now()),
		LoanDate:   *h.StatusBegin,
		DueDate:    h.DueBack,
	}
	if row.Status == types.LoanStatusReturned {
		row.ReturnDate = h.StatusBegin
	}

	if h.Mbrid != nil {
		user, err := e.userRepo.GetByExternalID(dbc, identity.Member(*h.Mbrid))
		if err != nil {
			return err
		}
		if user != nil {
			row.UserID = &user.ID
		}
	}

	_, _, err = e.loanRepo.Upsert(dbc, row)
	return err
}
