// Package config provides configuration management for ledgerbox.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// Archive drivers.
const (
	ArchiveLocal = "local"
	ArchiveS3    = "s3"
)

// Database drivers. They match the gormstore driver names.
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Backup   BackupConfig   `yaml:"backup"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BackupConfig defines export, validation and import settings.
type BackupConfig struct {
	SchemaVersion  string  `yaml:"schema_version"`
	MaxFileSizeMiB int     `yaml:"max_file_size_mib"`
	ChunkSize      int     `yaml:"chunk_size"`
	Concurrency    int     `yaml:"concurrency"`
	RateLimit      float64 `yaml:"rate_limit"`
}

// MaxFileSize returns the size limit in bytes.
func (b BackupConfig) MaxFileSize() int64 {
	return int64(b.MaxFileSizeMiB) << 20
}

// ArchiveConfig defines where backups are stored.
type ArchiveConfig struct {
	Driver    string `yaml:"driver"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// DatabaseConfig defines the ledger database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig defines how the current user is resolved. A token takes
// precedence over a static user id.
type AuthConfig struct {
	UserID      string `yaml:"user_id,omitempty"`
	Phone       string `yaml:"phone,omitempty"`
	Token       string `yaml:"token,omitempty"`
	TokenSecret string `yaml:"token_secret,omitempty"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file. Keys missing from the
// file keep the defaults for the directory holding it.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ledgererr.WithDetails(ledgererr.ErrConfigNotFound, map[string]string{"path": path})
	}
	if err != nil {
		return nil, err
	}

	cfg := DefaultsFor(filepath.Dir(path))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ledgererr.ErrConfigInvalid, path, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return ledgererr.WithDetails(ledgererr.Wrap(ledgererr.ErrConfigInvalid, format, args...),
			map[string]string{"key": key})
	}

	switch {
	case c.Backup.SchemaVersion == "":
		return invalid("backup.schema_version", "schema version is empty")
	case c.Backup.MaxFileSizeMiB <= 0:
		return invalid("backup.max_file_size_mib", "max file size must be positive, got %d", c.Backup.MaxFileSizeMiB)
	case c.Backup.ChunkSize < 0:
		return invalid("backup.chunk_size", "chunk size cannot be negative")
	case c.Backup.Concurrency < 0:
		return invalid("backup.concurrency", "concurrency cannot be negative")
	case c.Backup.RateLimit < 0:
		return invalid("backup.rate_limit", "rate limit cannot be negative")
	}

	switch c.Archive.Driver {
	case ArchiveLocal:
		if c.Archive.Dir == "" {
			return invalid("archive.dir", "local archive needs a directory")
		}
	case ArchiveS3:
		if c.Archive.Bucket == "" {
			return invalid("archive.bucket", "s3 archive needs a bucket")
		}
	default:
		return invalid("archive.driver", "unknown archive driver %q", c.Archive.Driver)
	}

	switch c.Database.Driver {
	case DatabaseSQLite, DatabasePostgres:
		if c.Database.DSN == "" {
			return invalid("database.dsn", "database dsn is empty")
		}
	default:
		return invalid("database.driver", "unknown database driver %q", c.Database.Driver)
	}

	if c.Auth.Token != "" && c.Auth.TokenSecret == "" {
		return invalid("auth.token_secret", "a token needs a token secret to verify it")
	}

	return nil
}

// GetHome returns the ledgerbox home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default ledgerbox home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ledgerbox"
	}
	return filepath.Join(home, ".ledgerbox")
}
