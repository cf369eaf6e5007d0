package migration

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/extract"
	"github.com/openshelf/openshelf-backend/internal/migration/identity"
)

func (e *Engine) importMaterials(ctx context.Context) error {
	return e.forEachPage("materials", func(offset, limit int) (int, error) {
		rows, err := e.src.BibliosPage(ctx, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, b := range rows {
			biblio := b
			e.withRecord("materials", fmt.Sprintf("biblio:%d", biblio.Bibid), func() error {
				return e.importBiblio(ctx, biblio)
			})
		}
		return len(rows), nil
	})
}

// importBiblio runs one bibliographic record's full pipeline: tagged
// fields -> attributes -> material upsert -> subject associations ->
// copies -> quantity recompute.
func (e *Engine) importBiblio(ctx context.Context, b legacy.Biblio) error {
	dbc := e.dbc(ctx)

	fields, err := e.src.FieldsForBiblio(ctx, b.Bibid)
	if err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	attrs := e.tagMap.Extract(toExtractFields(fields))

	author := b.Author
	if author == "" {
		author = attrs.Author
	}

	row := &types.Material{
		ExternalID:       identity.Material(b.Bibid),
		Title:            b.Title,
		Author:           author,
		CallNumber:       b.CallNumber,
		ISBN:             attrs.ISBN,
		Publisher:        attrs.Publisher,
		PublicationPlace: attrs.PublicationPlace,
		PublicationYear:  attrs.PublicationYear,
		Language:         attrs.Language,
		Country:          attrs.Country,
		Pages:            attrs.Pages,
		Price:            attrs.Price,
		Dimensions:       attrs.Dimensions,
		Description:      attrs.Description,
	}

	if b.CollectionCd != "" {
		coll, err := e.collectionRepo.GetByExternalID(dbc, identity.Collection(b.CollectionCd))
		if err != nil {
			return err
		}
		if coll != nil {
			row.CollectionID = &coll.ID
		}
	}
	if b.MaterialCode != "" {
		mt, err := e.materialTypeRepo.GetByExternalID(dbc, identity.MaterialType(b.MaterialCode))
		if err != nil {
			return err
		}
		if mt != nil {
			row.MaterialTypeID = &mt.ID
		}
	}

	row, _, err = e.materialRepo.Upsert(dbc, row)
	if err != nil {
		return fmt.Errorf("upsert material: %w", err)
	}

	subjectIDs := make([]uuid.UUID, 0, len(attrs.Subjects))
	for _, term := range attrs.Subjects {
		entry, err := e.resolver.Resolve(dbc, term)
		if err != nil {
			return fmt.Errorf("resolve subject %q: %w", term, err)
		}
		if entry != nil {
			subjectIDs = append(subjectIDs, entry.ID)
		}
	}
	if err := e.materialRepo.ReplaceSubjects(dbc, row.ID, subjectIDs); err != nil {
		return fmt.Errorf("replace subjects: %w", err)
	}

	if err := e.importCopies(ctx, b.Bibid, row.ID); err != nil {
		return err
	}

	if _, err := e.materialRepo.RecomputeQuantity(dbc, row.ID); err != nil {
		return fmt.Errorf("recompute quantity: %w", err)
	}
	return nil
}

func (e *Engine) importCopies(ctx context.Context, bibid int, materialID uuid.UUID) error {
	dbc := e.dbc(ctx)

	copies, err := e.src.CopiesForBiblio(ctx, bibid)
	if err != nil {
		return fmt.Errorf("copies: %w", err)
	}

	kept := make([]string, 0, len(copies))
	for _, c := range copies {
		row := &types.Copy{
			ExternalID: identity.Copy(c.Bibid, c.Copyid),
			Barcode:    c.Barcode,
			Status:     e.statuses.ForCopy(c.StatusCd),
			MaterialID: materialID,
			DueDate:    c.DueBack,
		}
		if _, _, err := e.copyRepo.Upsert(dbc, row); err != nil {
			return fmt.Errorf("upsert copy %s: %w", row.ExternalID, err)
		}
		kept = append(kept, row.ExternalID)
	}

	// Copies gone from the source must not survive the re-import, or the
	// quantity invariant drifts.
	return e.copyRepo.DeleteByMaterialExceptExternalIDs(dbc, materialID, kept)
}

func toExtractFields(rows []legacy.BiblioField) []extract.Field {
	out := make([]extract.Field, 0, len(rows))
	for _, r := range rows {
		out = append(out, extract.Field{Tag: r.Tag, Sub: r.SubfieldCd, Value: r.FieldData})
	}
	return out
}
