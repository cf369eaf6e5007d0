// Package subjects deduplicates free-text taxonomy terms into canonical
// Subject rows, memoizing lookups for the lifetime of one run.
package subjects

import (
	"strings"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf-backend/internal/data/repos/catalog"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/migration/identity"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// Entry is a resolved subject.
type Entry struct {
	ID         uuid.UUID
	ExternalID string
}

// Resolver caches name -> subject for one run. Created empty at run
// start, discarded at run end; the run is single-threaded so there is no
// locking.
type Resolver struct {
	repo  catalog.SubjectRepo
	log   *logger.Logger
	cache map[string]Entry
}

func NewResolver(repo catalog.SubjectRepo, baseLog *logger.Logger) *Resolver {
	return &Resolver{
		repo:  repo,
		log:   baseLog.With("component", "SubjectResolver"),
		cache: make(map[string]Entry),
	}
}

// Resolve returns the canonical subject for a raw term, creating it on
// first sight. Within one run a given term hits the database at most
// once. Blank terms resolve to nil.
func (r *Resolver) Resolve(dbc dbctx.Context, term string) (*Entry, error) {
	name := strings.TrimSpace(term)
	if name == "" {
		return nil, nil
	}
	if e, ok := r.cache[name]; ok {
		return &e, nil
	}

	row := &types.Subject{Name: name, ExternalID: identity.Subject(name)}
	row, created, err := r.repo.Upsert(dbc, row)
	if err != nil {
		return nil, err
	}
	if created {
		r.log.Debug("created subject", "name", name)
	}
	e := Entry{ID: row.ID, ExternalID: row.ExternalID}
	r.cache[name] = e
	return &e, nil
}

// Size reports how many distinct terms this run has resolved.
func (r *Resolver) Size() int { return len(r.cache) }
