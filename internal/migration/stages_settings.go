package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/migration/identity"
)

// importSettings moves the single legacy settings row. Columns with a
// dedicated target field map directly; everything else is preserved in
// the Settings JSON blob. A source with no settings row at all is valid
// input, not a stage failure.
func (e *Engine) importSettings(ctx context.Context) error {
	dbc := e.dbc(ctx)

	raw, err := e.src.SettingsRow(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e.rl.Infof("settings: no source row, nothing to migrate")
		return nil
	}
	if err != nil {
		return fmt.Errorf("settings row: %w", err)
	}

	rest := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if b, ok := v.([]byte); ok {
			rest[k] = string(b)
		} else {
			rest[k] = v
		}
	}

	row := &types.LibraryInfo{
		ExternalID: identity.LibrarySettings,
		Name:       popString(rest, "library_name"),
		Phone:      popString(rest, "library_phone"),
		Hours:      popString(rest, "library_hours"),
	}

	blob, err := json.Marshal(rest)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	row.Settings = datatypes.JSON(blob)

	_, _, err = e.libraryInfoRepo.Upsert(dbc, row)
	return err
}

func popString(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	delete(m, key)
	s, _ := v.(string)
	return s
}
