package migration

import (
	"context"
	"fmt"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/migration/identity"
)

func (e *Engine) importCategories(ctx context.Context) error {
	dbc := e.dbc(ctx)
	return e.forEachPage("categories", func(offset, limit int) (int, error) {
		rows, err := e.src.MemberClassificationsPage(ctx, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, c := range rows {
			code := c
			e.withRecord("categories", "classification:"+code.Code, func() error {
				row := &types.Category{
					ExternalID: identity.Category(code.Code),
					Code:       code.Code,
					Name:       code.Description,
				}
				_, _, err := e.categoryRepo.Upsert(dbc, row)
				return err
			})
		}
		return len(rows), nil
	})
}

func (e *Engine) importCollections(ctx context.Context) error {
	dbc := e.dbc(ctx)
	return e.forEachPage("collections", func(offset, limit int) (int, error) {
		rows, err := e.src.CollectionCodesPage(ctx, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, c := range rows {
			code := c
			e.withRecord("collections", "collection:"+code.Code, func() error {
				row := &types.Collection{
					ExternalID:     identity.Collection(code.Code),
					Code:           code.Code,
					Name:           code.Description,
					LoanPeriodDays: code.DaysDueBack,
				}
				_, _, err := e.collectionRepo.Upsert(dbc, row)
				return err
			})
		}
		return len(rows), nil
	})
}

func (e *Engine) importMaterialTypes(ctx context.Context) error {
	dbc := e.dbc(ctx)
	return e.forEachPage("material_types", func(offset, limit int) (int, error) {
		rows, err := e.src.MaterialTypeCodesPage(ctx, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, c := range rows {
			code := c
			e.withRecord("material_types", "material_type:"+code.Code, func() error {
				row := &types.MaterialType{
					ExternalID: identity.MaterialType(code.Code),
					Code:       code.Code,
					Name:       code.Description,
					ImageFile:  code.ImageFile,
				}
				_, _, err := e.materialTypeRepo.Upsert(dbc, row)
				return err
			})
		}
		return len(rows), nil
	})
}

// importSubjects pre-warms the resolver with every distinct term so the
// materials stage mostly hits the cache.
func (e *Engine) importSubjects(ctx context.Context) error {
	dbc := e.dbc(ctx)
	tags := e.tagMap.SubjectTags()
	return e.forEachPage("subjects", func(offset, limit int) (int, error) {
		terms, err := e.src.SubjectTermsPage(ctx, tags, offset, limit)
		if err != nil {
			return 0, err
		}
		for _, t := range terms {
			term := t
			e.withRecord("subjects", fmt.Sprintf("term:%q", term), func() error {
				_, err := e.resolver.Resolve(dbc, term)
				return err
			})
		}
		return len(terms), nil
	})
}
