package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/internal/legacy"
)

// Legacy-side seed helpers for engine and verifier tests.

func SeedStaff(tb testing.TB, src *gorm.DB, userid int, username string, admin bool) *legacy.Staff {
	tb.Helper()
	flag := ""
	if admin {
		flag = "Y"
	}
	row := &legacy.Staff{
		Userid:    userid,
		Username:  username,
		Pwd:       "legacyhash",
		FirstName: "Staff",
		LastName:  username,
		AdminFlag: flag,
	}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed staff: %v", err)
	}
	return row
}

func SeedMember(tb testing.TB, src *gorm.DB, mbrid int, barcode, classification string) *legacy.Member {
	tb.Helper()
	row := &legacy.Member{
		Mbrid:          mbrid,
		Barcode:        barcode,
		FirstName:      "Member",
		LastName:       barcode,
		Classification: classification,
	}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	return row
}

func SeedCollectionCode(tb testing.TB, src *gorm.DB, code, description string, days int) {
	tb.Helper()
	row := &legacy.CollectionCode{Code: code, Description: description, DaysDueBack: days}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed collection code: %v", err)
	}
}

func SeedMaterialTypeCode(tb testing.TB, src *gorm.DB, code, description string) {
	tb.Helper()
	row := &legacy.MaterialTypeCode{Code: code, Description: description}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed material type code: %v", err)
	}
}

func SeedBiblio(tb testing.TB, src *gorm.DB, bibid int, title string, fields []legacy.BiblioField) *legacy.Biblio {
	tb.Helper()
	row := &legacy.Biblio{Bibid: bibid, Title: title, Author: "", CallNumber: "813.54"}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed biblio: %v", err)
	}
	for i := range fields {
		fields[i].Bibid = bibid
		if fields[i].Fieldid == 0 {
			fields[i].Fieldid = i + 1
		}
	}
	if len(fields) > 0 {
		if err := src.Create(&fields).Error; err != nil {
			tb.Fatalf("seed biblio fields: %v", err)
		}
	}
	return row
}

func SeedCopy(tb testing.TB, src *gorm.DB, bibid, copyid int, statusCd string, due *time.Time, mbrid *int) *legacy.BiblioCopy {
	tb.Helper()
	begin := time.Now().Add(-72 * time.Hour).Truncate(time.Second)
	row := &legacy.BiblioCopy{
		Bibid:       bibid,
		Copyid:      copyid,
		Barcode:     "b",
		StatusCd:    statusCd,
		StatusBegin: &begin,
		DueBack:     due,
		Mbrid:       mbrid,
	}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed copy: %v", err)
	}
	return row
}

func SeedHistory(tb testing.TB, src *gorm.DB, bibid, copyid int, statusCd string, begin time.Time, due *time.Time, mbrid *int) *legacy.StatusHistory {
	tb.Helper()
	begin = begin.Truncate(time.Second)
	row := &legacy.StatusHistory{
		Bibid:       bibid,
		Copyid:      copyid,
		StatusCd:    statusCd,
		StatusBegin: &begin,
		DueBack:     due,
		Mbrid:       mbrid,
	}
	if err := src.Create(row).Error; err != nil {
		tb.Fatalf("seed status history: %v", err)
	}
	return row
}

func SeedSettings(tb testing.TB, src *gorm.DB, name, phone, hours string) {
	tb.Helper()
	err := src.Exec(
		"INSERT INTO settings (library_name, library_phone, library_hours, opac_url) VALUES (?, ?, ?, ?)",
		name, phone, hours, "http://opac.local",
	).Error
	if err != nil {
		tb.Fatalf("seed settings: %v", err)
	}
}
