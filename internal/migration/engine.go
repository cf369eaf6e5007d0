// Package migration drives the legacy-to-target import: stages in
// dependency order, offset pagination within a stage, per-record error
// isolation, and idempotent upserts keyed by deterministic external ids.
package migration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/repos/catalog"
	"github.com/openshelf/openshelf-backend/internal/data/repos/circulation"
	"github.com/openshelf/openshelf-backend/internal/data/repos/users"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/extract"
	"github.com/openshelf/openshelf-backend/internal/migration/runlog"
	"github.com/openshelf/openshelf-backend/internal/migration/status"
	"github.com/openshelf/openshelf-backend/internal/migration/subjects"
	"github.com/openshelf/openshelf-backend/internal/pkg/dbctx"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

type Engine struct {
	cfg Config
	src *legacy.SourceService
	log *logger.Logger
	rl  *runlog.Log

	tagMap   *extract.TagMap
	statuses *status.Tables
	resolver *subjects.Resolver

	roleRepo         users.RoleRepo
	userRepo         users.UserRepo
	categoryRepo     users.CategoryRepo
	collectionRepo   catalog.CollectionRepo
	materialTypeRepo catalog.MaterialTypeRepo
	subjectRepo      catalog.SubjectRepo
	materialRepo     catalog.MaterialRepo
	copyRepo         catalog.CopyRepo
	libraryInfoRepo  catalog.LibraryInfoRepo
	loanRepo         circulation.LoanRepo

	// roleIDs is filled by the roles stage and read by the users stage.
	roleIDs map[string]uuid.UUID

	defaultPwdHash string
}

func NewEngine(cfg Config, src *legacy.SourceService, target *gorm.DB, logg *logger.Logger, rl *runlog.Log) (*Engine, error) {
	tagMap := extract.DefaultTagMap()
	statuses := status.DefaultTables()
	if cfg.MappingOverridesPath != "" {
		if err := tagMap.LoadOverrides(cfg.MappingOverridesPath); err != nil {
			return nil, err
		}
		if err := statuses.LoadOverrides(cfg.MappingOverridesPath); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultMemberPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash default member password: %w", err)
	}

	subjectRepo := catalog.NewSubjectRepo(target, logg)
	return &Engine{
		cfg:              cfg,
		src:              src,
		log:              logg.With("component", "MigrationEngine"),
		rl:               rl,
		tagMap:           tagMap,
		statuses:         statuses,
		resolver:         subjects.NewResolver(subjectRepo, logg),
		roleRepo:         users.NewRoleRepo(target, logg),
		userRepo:         users.NewUserRepo(target, logg),
		categoryRepo:     users.NewCategoryRepo(target, logg),
		collectionRepo:   catalog.NewCollectionRepo(target, logg),
		materialTypeRepo: catalog.NewMaterialTypeRepo(target, logg),
		subjectRepo:      subjectRepo,
		materialRepo:     catalog.NewMaterialRepo(target, logg),
		copyRepo:         catalog.NewCopyRepo(target, logg),
		libraryInfoRepo:  catalog.NewLibraryInfoRepo(target, logg),
		loanRepo:         circulation.NewLoanRepo(target, logg),
		roleIDs:          map[string]uuid.UUID{},
		defaultPwdHash:   string(hash),
	}, nil
}

type stage struct {
	name string
	fn   func(ctx context.Context) error
}

// Run executes every stage in dependency order. A stage failure is
// logged and the run moves on; later stages may then fail benignly on
// missing prerequisites, which the verification report will surface.
func (e *Engine) Run(ctx context.Context) {
	stages := []stage{
		{"roles", e.importRoles},
		{"users", e.importUsers},
		{"categories", e.importCategories},
		{"collections", e.importCollections},
		{"material_types", e.importMaterialTypes},
		{"subjects", e.importSubjects},
		{"materials", e.importMaterials},
		{"loans", e.importLoans},
		{"settings", e.importSettings},
	}
	for _, s := range stages {
		e.runStage(ctx, s)
	}
	e.rl.Infof("run finished: row errors=%d stage errors=%d subjects cached=%d",
		e.rl.RowErrors(), e.rl.StageErrors(), e.resolver.Size())
}

func (e *Engine) runStage(ctx context.Context, s stage) {
	defer func() {
		if r := recover(); r != nil {
			e.rl.StageError(s.name, fmt.Errorf("panic: %v", r))
		}
	}()
	e.rl.Infof("stage %s started", s.name)
	if err := s.fn(ctx); err != nil {
		e.rl.StageError(s.name, err)
		return
	}
	e.rl.Infof("stage %s completed", s.name)
}

// withRecord isolates one source row's pipeline: a failure or panic is
// logged with the source key and the stage keeps going.
func (e *Engine) withRecord(stageName, sourceKey string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.rl.RecordError(stageName, sourceKey, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		e.rl.RecordError(stageName, sourceKey, err)
	}
}

// forEachPage drives offset pagination: fetch returns how many rows the
// page held, and a short page ends the stage. At most one page of source
// rows is resident at a time.
func (e *Engine) forEachPage(stageName string, fetch func(offset, limit int) (int, error)) error {
	offset := 0
	for {
		n, err := fetch(offset, e.cfg.BatchSize)
		if err != nil {
			return err
		}
		offset += n
		e.rl.Progress(stageName, offset)
		if n < e.cfg.BatchSize {
			return nil
		}
	}
}

func (e *Engine) dbc(ctx context.Context) dbctx.Context {
	return dbctx.New(ctx)
}
