package config

import "fmt"

// ArchiveConfig selects and tunes the finished-match archive.
type ArchiveConfig struct {
	Driver        string `env:"ARCHIVE_DRIVER" envDefault:"fs"`
	Dir           string `env:"ARCHIVE_DIR" envDefault:"data/archive"`
	RetentionDays int    `env:"ARCHIVE_RETENTION_DAYS" envDefault:"90"`
	DatabaseURL   string `env:"DATABASE_URL"`
	// MigrateOnStart applies embedded schema migrations before the postgres archive is used.
	MigrateOnStart bool `env:"ARCHIVE_MIGRATE" envDefault:"true"`
}

func (a ArchiveConfig) validate() error {
	switch a.Driver {
	case ArchiveFS:
		if a.Dir == "" {
			return fmt.Errorf("ARCHIVE_DIR is required for the fs archive")
		}
	case ArchivePostgres:
		if a.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres archive")
		}
	default:
		return fmt.Errorf("unknown ARCHIVE_DRIVER %q", a.Driver)
	}
	if a.RetentionDays < 0 {
		return fmt.Errorf("ARCHIVE_RETENTION_DAYS must not be negative, got %d", a.RetentionDays)
	}
	return nil
}
