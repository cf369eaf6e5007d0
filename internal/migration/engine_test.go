package migration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/data/repos/testutil"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration/runlog"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

func newTestEngine(t *testing.T, src, target *gorm.DB, batch int) (*Engine, *runlog.Log) {
	t.Helper()
	rl, err := runlog.Open(filepath.Join(t.TempDir(), "migration.log"), logger.NewNop())
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	t.Cleanup(func() { _ = rl.Close() })

	cfg := Config{BatchSize: batch, DefaultMemberPassword: "changeme"}
	eng, err := NewEngine(cfg, legacy.NewSourceServiceFromDB(src, logger.NewNop()), target, testutil.Logger(t), rl)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, rl
}

func seedLibrary(t *testing.T, src *gorm.DB) {
	t.Helper()

	testutil.SeedStaff(t, src, 1, "root", true)
	testutil.SeedStaff(t, src, 2, "desk", false)
	testutil.SeedMember(t, src, 10, "100001", "a")
	testutil.SeedMember(t, src, 11, "100002", "")
	if err := src.Create(&legacy.MemberClassification{Code: "a", Description: "Adult"}).Error; err != nil {
		t.Fatalf("seed classification: %v", err)
	}

	testutil.SeedCollectionCode(t, src, "fic", "Fiction", 21)
	testutil.SeedMaterialTypeCode(t, src, "book", "Book")

	b := &legacy.Biblio{
		Bibid: 1, Title: "Beloved", Author: "Morrison, Toni",
		CallNumber: "813.54", MaterialCode: "book", CollectionCd: "fic",
	}
	if err := src.Create(b).Error; err != nil {
		t.Fatalf("seed biblio: %v", err)
	}
	fields := []legacy.BiblioField{
		{Bibid: 1, Fieldid: 1, Tag: "020", SubfieldCd: "a", FieldData: "9781400033416"},
		{Bibid: 1, Fieldid: 2, Tag: "650", SubfieldCd: "a", FieldData: "African American women"},
		{Bibid: 1, Fieldid: 3, Tag: "651", SubfieldCd: "a", FieldData: "Ohio"},
		// Subdivision sub-field under a subject tag; never becomes a subject.
		{Bibid: 1, Fieldid: 4, Tag: "650", SubfieldCd: "v", FieldData: "Fiction"},
	}
	if err := src.Create(&fields).Error; err != nil {
		t.Fatalf("seed fields: %v", err)
	}

	mbrid := 10
	due := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second)
	testutil.SeedCopy(t, src, 1, 1, "in", nil, nil)
	testutil.SeedCopy(t, src, 1, 2, "out", &due, &mbrid)
	testutil.SeedHistory(t, src, 1, 1, "in", time.Now().Add(-30*24*time.Hour), nil, &mbrid)

	testutil.SeedSettings(t, src, "Main Street Library", "555-0100", "9-5")
}

func TestEngineRunMigratesEverything(t *testing.T) {
	src := testutil.SourceDB(t)
	target := testutil.DB(t)
	seedLibrary(t, src)

	// Batch size below the row counts so pagination has to page.
	eng, rl := newTestEngine(t, src, target, 1)
	eng.Run(context.Background())

	if rl.RowErrors() != 0 || rl.StageErrors() != 0 {
		t.Fatalf("errors: rows=%d stages=%d", rl.RowErrors(), rl.StageErrors())
	}

	counts := map[interface{}]int64{
		&types.Role{}:         3,
		&types.User{}:         4,
		&types.Category{}:     1,
		&types.Collection{}:   1,
		&types.MaterialType{}: 1,
		&types.Subject{}:      2,
		&types.Material{}:     1,
		&types.Copy{}:         2,
		&types.Loan{}:         2,
		&types.LibraryInfo{}:  1,
	}
	for model, want := range counts {
		var n int64
		if err := target.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if n != want {
			t.Fatalf("count %T: got %d want %d", model, n, want)
		}
	}

	var mat types.Material
	if err := target.Where("external_id = ?", "material_1").First(&mat).Error; err != nil {
		t.Fatalf("material: %v", err)
	}
	if mat.Author != "Morrison, Toni" || mat.ISBN != "9781400033416" {
		t.Fatalf("material attributes: %+v", mat)
	}
	if mat.Quantity != 2 {
		t.Fatalf("quantity: got %d", mat.Quantity)
	}
	if mat.CollectionID == nil || mat.MaterialTypeID == nil {
		t.Fatal("collection or material type link missing")
	}

	var cp types.Copy
	if err := target.Where("external_id = ?", "copy_1_2").First(&cp).Error; err != nil {
		t.Fatalf("copy: %v", err)
	}
	if cp.Status != types.CopyStatusLoaned || cp.DueDate == nil {
		t.Fatalf("checked-out copy: status=%s due=%v", cp.Status, cp.DueDate)
	}

	var cat types.Category
	if err := target.Where("external_id = ?", "category_a").First(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}
	if cat.Name != "Adult" {
		t.Fatalf("classification stage did not fill the stub: %+v", cat)
	}
	var member types.User
	if err := target.Where("external_id = ?", "member_10").First(&member).Error; err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.CategoryID == nil || *member.CategoryID != cat.ID {
		t.Fatal("member not linked to its category")
	}

	var returned types.Loan
	if err := target.Where("status = ?", types.LoanStatusReturned).First(&returned).Error; err != nil {
		t.Fatalf("returned loan: %v", err)
	}
	if returned.ReturnDate == nil {
		t.Fatal("returned loan has no return date")
	}
	var active types.Loan
	if err := target.Where("status = ?", types.LoanStatusActive).First(&active).Error; err != nil {
		t.Fatalf("active loan: %v", err)
	}
	if active.UserID == nil || *active.UserID != member.ID {
		t.Fatal("active loan not linked to the borrowing member")
	}

	var info types.LibraryInfo
	if err := target.First(&info).Error; err != nil {
		t.Fatalf("library info: %v", err)
	}
	if info.Name != "Main Street Library" || info.Phone != "555-0100" {
		t.Fatalf("library info: %+v", info)
	}
	if len(info.Settings) == 0 {
		t.Fatal("unmapped settings columns were dropped")
	}
}

func TestEngineRunIsIdempotent(t *testing.T) {
	src := testutil.SourceDB(t)
	target := testutil.DB(t)
	seedLibrary(t, src)

	eng, rl := newTestEngine(t, src, target, 100)
	eng.Run(context.Background())
	if rl.RowErrors() != 0 || rl.StageErrors() != 0 {
		t.Fatalf("first run errors: rows=%d stages=%d", rl.RowErrors(), rl.StageErrors())
	}

	var mat types.Material
	if err := target.Where("external_id = ?", "material_1").First(&mat).Error; err != nil {
		t.Fatalf("material after first run: %v", err)
	}

	// A second engine mirrors a re-run of the binary: cold caches, same
	// source. Nothing may duplicate and identities must hold.
	eng2, rl2 := newTestEngine(t, src, target, 100)
	eng2.Run(context.Background())
	if rl2.RowErrors() != 0 || rl2.StageErrors() != 0 {
		t.Fatalf("second run errors: rows=%d stages=%d", rl2.RowErrors(), rl2.StageErrors())
	}

	for model, want := range map[interface{}]int64{
		&types.User{}: 4, &types.Material{}: 1, &types.Copy{}: 2,
		&types.Loan{}: 2, &types.Subject{}: 2, &types.LibraryInfo{}: 1,
	} {
		var n int64
		if err := target.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if n != want {
			t.Fatalf("count %T after re-run: got %d want %d", model, n, want)
		}
	}

	var again types.Material
	if err := target.Where("external_id = ?", "material_1").First(&again).Error; err != nil {
		t.Fatalf("material after second run: %v", err)
	}
	if again.ID != mat.ID {
		t.Fatal("material identity changed across runs")
	}
}

func TestEngineQuantityFollowsSourceCopies(t *testing.T) {
	src := testutil.SourceDB(t)
	target := testutil.DB(t)

	testutil.SeedBiblio(t, src, 5, "Collected Poems", nil)
	testutil.SeedCopy(t, src, 5, 1, "in", nil, nil)
	testutil.SeedCopy(t, src, 5, 2, "in", nil, nil)

	eng, _ := newTestEngine(t, src, target, 100)
	eng.Run(context.Background())

	var mat types.Material
	if err := target.Where("external_id = ?", "material_5").First(&mat).Error; err != nil {
		t.Fatalf("material: %v", err)
	}
	if mat.Quantity != 2 {
		t.Fatalf("quantity after first run: got %d", mat.Quantity)
	}

	// A copy withdrawn from the source disappears on re-import and the
	// quantity follows.
	if err := src.Where("bibid = ? AND copyid = ?", 5, 2).Delete(&legacy.BiblioCopy{}).Error; err != nil {
		t.Fatalf("withdraw copy: %v", err)
	}
	eng2, _ := newTestEngine(t, src, target, 100)
	eng2.Run(context.Background())

	if err := target.Where("external_id = ?", "material_5").First(&mat).Error; err != nil {
		t.Fatalf("material after re-run: %v", err)
	}
	if mat.Quantity != 1 {
		t.Fatalf("quantity after withdrawal: got %d", mat.Quantity)
	}
	var n int64
	if err := target.Model(&types.Copy{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("copies after withdrawal: n=%d err=%v", n, err)
	}
}

func TestEngineSettingsRowAbsent(t *testing.T) {
	src := testutil.SourceDB(t)
	target := testutil.DB(t)
	testutil.SeedBiblio(t, src, 1, "Beloved", nil)

	// No settings row seeded: an empty settings table is valid input.
	eng, rl := newTestEngine(t, src, target, 100)
	eng.Run(context.Background())

	if rl.StageErrors() != 0 || rl.RowErrors() != 0 {
		t.Fatalf("errors: rows=%d stages=%d", rl.RowErrors(), rl.StageErrors())
	}
	var n int64
	if err := target.Model(&types.LibraryInfo{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("library info rows: n=%d err=%v", n, err)
	}
}

func TestEngineProgressLabelsPerPass(t *testing.T) {
	src := testutil.SourceDB(t)
	target := testutil.DB(t)
	testutil.SeedStaff(t, src, 1, "root", true)
	testutil.SeedStaff(t, src, 2, "desk", false)
	testutil.SeedMember(t, src, 10, "100001", "")
	testutil.SeedMember(t, src, 11, "100002", "")

	logPath := filepath.Join(t.TempDir(), "migration.log")
	rl, err := runlog.Open(logPath, logger.NewNop())
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	cfg := Config{BatchSize: 1, DefaultMemberPassword: "changeme"}
	eng, err := NewEngine(cfg, legacy.NewSourceServiceFromDB(src, logger.NewNop()), target, testutil.Logger(t), rl)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	eng.Run(context.Background())
	if err := rl.Close(); err != nil {
		t.Fatalf("close run log: %v", err)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	text := string(raw)
	// Each pass counts under its own label, so the processed counter never
	// appears to run backwards mid-stage.
	for _, want := range []string{
		"progress stage=users:staff processed=2",
		"progress stage=users:members processed=2",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("run log missing %q in:\n%s", want, text)
		}
	}
}

func TestEngineIsolatesBadRows(t *testing.T) {
	src := testutil.SourceDB(t)
	target := testutil.DB(t)

	testutil.SeedBiblio(t, src, 7, "Sula", nil)
	testutil.SeedCopy(t, src, 7, 1, "in", nil, nil)
	testutil.SeedHistory(t, src, 7, 1, "in", time.Now().Add(-24*time.Hour), nil, nil)
	// History row with no begin timestamp cannot derive a loan key.
	if err := src.Create(&legacy.StatusHistory{Bibid: 7, Copyid: 1, StatusCd: "out"}).Error; err != nil {
		t.Fatalf("seed bad history row: %v", err)
	}

	eng, rl := newTestEngine(t, src, target, 100)
	eng.Run(context.Background())

	if rl.RowErrors() != 1 {
		t.Fatalf("row errors: got %d want 1", rl.RowErrors())
	}
	if rl.StageErrors() != 0 {
		t.Fatalf("stage errors: got %d", rl.StageErrors())
	}
	var n int64
	if err := target.Model(&types.Loan{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("good loan did not survive: n=%d err=%v", n, err)
	}
	if err := target.Model(&types.Material{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("materials: n=%d err=%v", n, err)
	}
}
