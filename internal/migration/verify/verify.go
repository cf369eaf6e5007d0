// Package verify recomputes source and target counts per entity kind
// after a run and reports completeness. It is the engine's correctness
// oracle: a partially failed migration surfaces here, never as a silent
// success.
package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/repos/catalog"
	"github.com/openshelf/openshelf-backend/internal/data/repos/circulation"
	"github.com/openshelf/openshelf-backend/internal/data/repos/users"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/extract"
	"github.com/openshelf/openshelf-backend/internal/migration/status"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

const (
	sampleLimit = 5
	scanLimit   = 200
)

type KindResult struct {
	Kind        string
	SourceCount int64
	TargetCount int64
	Percent     float64

	// MissingSamples holds source keys whose derived external id was not
	// found in the target, distinguishing unmigrated rows from a count
	// formula mismatch.
	MissingSamples []string
}

type Report struct {
	GeneratedAt time.Time
	Results     []KindResult
}

func (r *Report) Complete() bool {
	for _, res := range r.Results {
		if res.Percent < 100 {
			return false
		}
	}
	return true
}

func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "verification %s\n", r.GeneratedAt.Format(time.RFC3339))
	for _, res := range r.Results {
		fmt.Fprintf(&b, "  %-15s source=%-8d target=%-8d match=%.1f%%\n",
			res.Kind, res.SourceCount, res.TargetCount, res.Percent)
		for _, key := range res.MissingSamples {
			fmt.Fprintf(&b, "    missing: %s\n", key)
		}
	}
	return b.String()
}

type Verifier struct {
	src *legacy.SourceService
	log *logger.Logger

	statuses *status.Tables
	tagMap   *extract.TagMap

	userRepo         users.UserRepo
	categoryRepo     users.CategoryRepo
	collectionRepo   catalog.CollectionRepo
	materialTypeRepo catalog.MaterialTypeRepo
	subjectRepo      catalog.SubjectRepo
	materialRepo     catalog.MaterialRepo
	copyRepo         catalog.CopyRepo
	loanRepo         circulation.LoanRepo
}

// New builds a verifier. mappingPath must be the same overrides file the
// run was configured with (empty for none): the source-side count filters
// only mirror the stages if both read the same tag and status tables.
func New(src *legacy.SourceService, target *gorm.DB, logg *logger.Logger, mappingPath string) (*Verifier, error) {
	statuses := status.DefaultTables()
	tagMap := extract.DefaultTagMap()
	if mappingPath != "" {
		if err := tagMap.LoadOverrides(mappingPath); err != nil {
			return nil, err
		}
		if err := statuses.LoadOverrides(mappingPath); err != nil {
			return nil, err
		}
	}
	return &Verifier{
		src:              src,
		log:              logg.With("component", "Verifier"),
		statuses:         statuses,
		tagMap:           tagMap,
		userRepo:         users.NewUserRepo(target, logg),
		categoryRepo:     users.NewCategoryRepo(target, logg),
		collectionRepo:   catalog.NewCollectionRepo(target, logg),
		materialTypeRepo: catalog.NewMaterialTypeRepo(target, logg),
		subjectRepo:      catalog.NewSubjectRepo(target, logg),
		materialRepo:     catalog.NewMaterialRepo(target, logg),
		copyRepo:         catalog.NewCopyRepo(target, logg),
		loanRepo:         circulation.NewLoanRepo(target, logg),
	}, nil
}

type kindCheck struct {
	kind   string
	source func(ctx context.Context) (int64, error)
	target func(dbc dbctx.Context) (int64, error)
	sample func(ctx context.Context) ([]string, error)
}

// Run recomputes every kind's counts. The count queries are read-only
// against both stores, so they fan out concurrently; sampling for
// diverging kinds runs afterwards, sequentially.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	loanCodes := v.statuses.LoanCodes()
	subjectTags := v.tagMap.SubjectTags()

	checks := []kindCheck{
		{
			kind: "users",
			source: func(ctx context.Context) (int64, error) {
				staff, err := v.src.CountStaff(ctx)
				if err != nil {
					return 0, err
				}
				members, err := v.src.CountMembers(ctx)
				if err != nil {
					return 0, err
				}
				return staff + members, nil
			},
			target: v.userRepo.Count,
			sample: v.sampleUsers,
		},
		{
			kind:   "categories",
			source: v.src.CountMemberClassifications,
			target: v.categoryRepo.Count,
		},
		{
			kind:   "collections",
			source: v.src.CountCollectionCodes,
			target: v.collectionRepo.Count,
		},
		{
			kind:   "material_types",
			source: v.src.CountMaterialTypeCodes,
			target: v.materialTypeRepo.Count,
		},
		{
			kind: "subjects",
			source: func(ctx context.Context) (int64, error) {
				return v.src.CountDistinctSubjectTerms(ctx, subjectTags)
			},
			target: v.subjectRepo.Count,
		},
		{
			kind:   "materials",
			source: v.src.CountBiblios,
			target: v.materialRepo.Count,
			sample: v.sampleMaterials,
		},
		{
			kind:   "copies",
			source: v.src.CountCopies,
			target: v.copyRepo.Count,
			sample: v.sampleCopies,
		},
		{
			// Historical loan rows plus the live checked-out snapshot are
			// the two populations the loan stage reads.
			kind: "loans",
			source: func(ctx context.Context) (int64, error) {
				hist, err := v.src.CountStatusHistory(ctx, loanCodes)
				if err != nil {
					return 0, err
				}
				out, err := v.src.CountCheckedOutCopies(ctx, status.CodeOut)
				if err != nil {
					return 0, err
				}
				return hist + out, nil
			},
			target: v.loanRepo.Count,
			sample: v.sampleLoans,
		},
		{
			// The source has a single checked-out code, so active and
			// overdue are one logical bucket on the target side.
			kind: "active_loans",
			source: func(ctx context.Context) (int64, error) {
				return v.src.CountCheckedOutCopies(ctx, status.CodeOut)
			},
			target: func(dbc dbctx.Context) (int64, error) {
				return v.loanRepo.CountByStatuses(dbc, []string{types.LoanStatusActive, types.LoanStatusOverdue})
			},
		},
	}

	results := make([]KindResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		i, c := i, c
		g.Go(func() error {
			src, err := c.source(gctx)
			if err != nil {
				return fmt.Errorf("%s source count: %w", c.kind, err)
			}
			tgt, err := c.target(dbctx.New(gctx))
			if err != nil {
				return fmt.Errorf("%s target count: %w", c.kind, err)
			}
			results[i] = KindResult{
				Kind:        c.kind,
				SourceCount: src,
				TargetCount: tgt,
				Percent:     percent(src, tgt),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range checks {
		if results[i].Percent >= 100 || c.sample == nil {
			continue
		}
		samples, err := c.sample(ctx)
		if err != nil {
			v.log.Warn("sampling failed", "kind", c.kind, "error", err)
			continue
		}
		results[i].MissingSamples = samples
	}

	return &Report{GeneratedAt: time.Now(), Results: results}, nil
}

func percent(source, target int64) float64 {
	if source == 0 {
		return 100
	}
	return float64(target) / float64(source) * 100
}
