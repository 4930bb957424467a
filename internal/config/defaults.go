package config

import (
	"path/filepath"

	"github.com/mrz1836/ledgerbox/internal/backup"
)

// Defaults returns the default configuration rooted at ~/.ledgerbox.
func Defaults() *Config {
	return DefaultsFor("~/.ledgerbox")
}

// DefaultsFor returns the default configuration with every file kept under home.
func DefaultsFor(home string) *Config {
	return &Config{
		Version: 1,
		Home:    home,
		Backup: BackupConfig{
			SchemaVersion:  backup.SchemaVersion,
			MaxFileSizeMiB: int(backup.DefaultMaxFileSize >> 20),
			ChunkSize:      backup.DefaultChunkSize,
			Concurrency:    0, // one in-flight create per record of a chunk
			RateLimit:      0,
		},
		Archive: ArchiveConfig{
			Driver: ArchiveLocal,
			Dir:    filepath.Join(home, "backups"),
			Region: "us-east-1",
		},
		Database: DatabaseConfig{
			Driver: DatabaseSQLite,
			DSN:    filepath.Join(home, "ledger.db"),
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  filepath.Join(home, "ledgerbox.log"),
		},
	}
}
