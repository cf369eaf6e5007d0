package migration

import (
	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
)

// Config is the run configuration, environment-provided. Connection
// parameters live with the store services; this covers the engine knobs.
type Config struct {
	// BatchSize is the page size for every stage's source pagination.
	BatchSize int

	// DefaultMemberPassword is hashed once and assigned to every migrated
	// patron account; the surrounding application rotates it afterwards.
	DefaultMemberPassword string

	// RunLogPath is the append-only run log artifact.
	RunLogPath string

	// MappingOverridesPath optionally points at a YAML file with
	// site-local tag map and status map additions.
	MappingOverridesPath string
}

func LoadConfig() Config {
	return Config{
		BatchSize:             envutil.Int("MIGRATE_BATCH_SIZE", 500),
		DefaultMemberPassword: envutil.String("MIGRATE_DEFAULT_PASSWORD", "changeme"),
		RunLogPath:            envutil.String("MIGRATE_RUN_LOG", "migration.log"),
		MappingOverridesPath:  envutil.String("MIGRATE_MAPPING_FILE", ""),
	}
}
