package legacy

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/openshelf/openshelf-backend/internal/migration/extract"
	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// SourceService owns the read-only connection to the legacy MySQL schema
// for the lifetime of a migration run.
type SourceService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceService(logg *logger.Logger) (*SourceService, error) {
	serviceLog := logg.With("service", "SourceService")

	host := envutil.String("LEGACY_MYSQL_HOST", "localhost")
	port := envutil.String("LEGACY_MYSQL_PORT", "3306")
	user := envutil.String("LEGACY_MYSQL_USER", "root")
	password := envutil.String("LEGACY_MYSQL_PASSWORD", "")
	name := envutil.String("LEGACY_MYSQL_NAME", "openbiblio")
	timeout := envutil.Duration("LEGACY_MYSQL_TIMEOUT", 10*time.Second)

	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&timeout=%s&readTimeout=%s",
		user, password, host, port, name, timeout, timeout,
	)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy MySQL: %w", err)
	}

	return &SourceService{db: gdb, log: serviceLog}, nil
}

// NewSourceServiceFromDB wraps an already open handle. Used by tests.
func NewSourceServiceFromDB(db *gorm.DB, logg *logger.Logger) *SourceService {
	return &SourceService{db: db, log: logg.With("service", "SourceService")}
}

func (s *SourceService) DB() *gorm.DB { return s.db }

func (s *SourceService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ---- paged readers (ordered by primary key, offset pagination) ----

func (s *SourceService) StaffPage(ctx context.Context, offset, limit int) ([]Staff, error) {
	var rows []Staff
	err := s.db.WithContext(ctx).Order("userid ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SourceService) MembersPage(ctx context.Context, offset, limit int) ([]Member, error) {
	var rows []Member
	err := s.db.WithContext(ctx).Order("mbrid ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SourceService) MemberClassificationsPage(ctx context.Context, offset, limit int) ([]MemberClassification, error) {
	var rows []MemberClassification
	err := s.db.WithContext(ctx).Order("code ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SourceService) CollectionCodesPage(ctx context.Context, offset, limit int) ([]CollectionCode, error) {
	var rows []CollectionCode
	err := s.db.WithContext(ctx).Order("code ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SourceService) MaterialTypeCodesPage(ctx context.Context, offset, limit int) ([]MaterialTypeCode, error) {
	var rows []MaterialTypeCode
	err := s.db.WithContext(ctx).Order("code ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SourceService) BibliosPage(ctx context.Context, offset, limit int) ([]Biblio, error) {
	var rows []Biblio
	err := s.db.WithContext(ctx).Order("bibid ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *SourceService) StatusHistoryPage(ctx context.Context, codes []string, offset, limit int) ([]StatusHistory, error) {
	var rows []StatusHistory
	err := s.db.WithContext(ctx).
		Where("status_cd IN ?", codes).
		Order("bibid ASC, copyid ASC, status_begin_dt ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *SourceService) CopiesPage(ctx context.Context, offset, limit int) ([]BiblioCopy, error) {
	var rows []BiblioCopy
	err := s.db.WithContext(ctx).
		Order("bibid ASC, copyid ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CheckedOutCopiesPage returns snapshot rows currently in the given
// status, for the loan stage's second source population.
func (s *SourceService) CheckedOutCopiesPage(ctx context.Context, code string, offset, limit int) ([]BiblioCopy, error) {
	var rows []BiblioCopy
	err := s.db.WithContext(ctx).
		Where("status_cd = ?", code).
		Order("bibid ASC, copyid ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, err
}

// subjectPairCondition builds a (tag, subfield_cd) filter for the given
// pairs. The sub-field must participate: sibling sub-fields under a
// subject tag hold subdivisions the extractor never reads.
func subjectPairCondition(pairs []extract.TagSub) (string, []interface{}) {
	clauses := make([]string, 0, len(pairs))
	args := make([]interface{}, 0, len(pairs)*2)
	for _, p := range pairs {
		clauses = append(clauses, "(tag = ? AND subfield_cd = ?)")
		args = append(args, p.Tag, p.Sub)
	}
	return strings.Join(clauses, " OR "), args
}

// SubjectTermsPage returns distinct raw subject terms found under the
// given (tag, sub-field) pairs, for the subject pre-warm stage.
func (s *SourceService) SubjectTermsPage(ctx context.Context, pairs []extract.TagSub, offset, limit int) ([]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	cond, args := subjectPairCondition(pairs)
	var terms []string
	err := s.db.WithContext(ctx).
		Model(&BiblioField{}).
		Distinct("field_data").
		Where(cond, args...).
		Order("field_data ASC").
		Offset(offset).Limit(limit).
		Pluck("field_data", &terms).Error
	return terms, err
}

// ---- per-record readers ----

func (s *SourceService) FieldsForBiblio(ctx context.Context, bibid int) ([]BiblioField, error) {
	var rows []BiblioField
	err := s.db.WithContext(ctx).
		Where("bibid = ?", bibid).
		Order("fieldid ASC").
		Find(&rows).Error
	return rows, err
}

func (s *SourceService) CopiesForBiblio(ctx context.Context, bibid int) ([]BiblioCopy, error) {
	var rows []BiblioCopy
	err := s.db.WithContext(ctx).
		Where("bibid = ?", bibid).
		Order("copyid ASC").
		Find(&rows).Error
	return rows, err
}

// SettingsRow fetches the single legacy settings row as a raw column map
// so unmapped columns survive the migration.
func (s *SourceService) SettingsRow(ctx context.Context) (map[string]interface{}, error) {
	row := map[string]interface{}{}
	err := s.db.WithContext(ctx).Table("settings").Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ---- counts (reconciliation) ----

func (s *SourceService) count(ctx context.Context, q *gorm.DB) (int64, error) {
	var n int64
	err := q.WithContext(ctx).Count(&n).Error
	return n, err
}

func (s *SourceService) CountStaff(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&Staff{}))
}

func (s *SourceService) CountMembers(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&Member{}))
}

func (s *SourceService) CountMemberClassifications(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&MemberClassification{}))
}

func (s *SourceService) CountCollectionCodes(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&CollectionCode{}))
}

func (s *SourceService) CountMaterialTypeCodes(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&MaterialTypeCode{}))
}

func (s *SourceService) CountBiblios(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&Biblio{}))
}

func (s *SourceService) CountCopies(ctx context.Context) (int64, error) {
	return s.count(ctx, s.db.Model(&BiblioCopy{}))
}

// CountDistinctSubjectTerms counts distinct trimmed terms under the
// given (tag, sub-field) pairs, mirroring the resolver's normalization
// so the reconciliation formula matches what the subject stage actually
// imports.
func (s *SourceService) CountDistinctSubjectTerms(ctx context.Context, pairs []extract.TagSub) (int64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	cond, args := subjectPairCondition(pairs)
	var n int64
	err := s.db.WithContext(ctx).
		Raw("SELECT COUNT(DISTINCT TRIM(field_data)) FROM biblio_field WHERE ("+cond+") AND TRIM(field_data) <> ''", args...).
		Scan(&n).Error
	return n, err
}

func (s *SourceService) CountStatusHistory(ctx context.Context, codes []string) (int64, error) {
	return s.count(ctx, s.db.Model(&StatusHistory{}).Where("status_cd IN ?", codes))
}

func (s *SourceService) CountCheckedOutCopies(ctx context.Context, code string) (int64, error) {
	return s.count(ctx, s.db.Model(&BiblioCopy{}).Where("status_cd = ?", code))
}
