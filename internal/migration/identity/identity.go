// Package identity derives the deterministic external keys that bridge
// legacy rows to target entities. The same source row always yields the
// same key, across runs and processes; the keys are the engine's sole
// idempotency handle.
package identity

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

func Role(name string) string {
	return fmt.Sprintf("role_%s", name)
}

func Staff(userid int) string {
	return fmt.Sprintf("staff_%d", userid)
}

func Member(mbrid int) string {
	return fmt.Sprintf("member_%d", mbrid)
}

func Category(code string) string {
	return fmt.Sprintf("category_%s", code)
}

func Collection(code string) string {
	return fmt.Sprintf("collection_%s", code)
}

func MaterialType(code string) string {
	return fmt.Sprintf("mattype_%s", code)
}

func Material(bibid int) string {
	return fmt.Sprintf("material_%d", bibid)
}

func Copy(bibid, copyid int) string {
	return fmt.Sprintf("copy_%d_%d", bibid, copyid)
}

// Loan keys on the loan's begin timestamp so a copy loaned out more than
// once stays distinct, while a history row and its snapshot twin collapse
// into one loan.
func Loan(bibid, copyid int, begin time.Time) string {
	return fmt.Sprintf("loan_%d_%d_%d", bibid, copyid, begin.Unix())
}

// Subject keys on the normalized term itself, base64url-encoded so
// arbitrary free text stays a clean key.
func Subject(name string) string {
	trimmed := strings.TrimSpace(name)
	return "topic_" + base64.URLEncoding.EncodeToString([]byte(trimmed))
}

// LibrarySettings is fixed: the legacy schema has a single settings row.
const LibrarySettings = "library_settings"
