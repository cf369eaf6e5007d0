package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	// Fields maps "<tag><sub>" keys (e.g. "690a") to attribute names.
	Fields map[string]string `yaml:"fields"`
}

// LoadOverrides merges tag-map entries from a YAML mapping file into m.
// One-off migrations routinely carry site-local tags, so the table is
// extensible without a rebuild.
func (m *TagMap) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tag map overrides: %w", err)
	}
	var of overrideFile
	if err := yaml.Unmarshal(raw, &of); err != nil {
		return fmt.Errorf("parse tag map overrides: %w", err)
	}
	for key, attr := range of.Fields {
		if _, ok := setters[attr]; !ok {
			return fmt.Errorf("tag map overrides: unknown attribute %q for %q", attr, key)
		}
		m.fields[key] = attr
	}
	return nil
}
