package cli

import (
	"context"

	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/config"
)

// Compile-time interface checks.
var (
	_ LogWriter     = (*config.Logger)(nil)
	_ backup.Logger = LogWriter(nil)
	_ BackupService = (*backup.Service)(nil)
)

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Info logs an informational message.
	Info(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	DebugFields(msg string, fields map[string]any)
	InfoFields(msg string, fields map[string]any)
	ErrorFields(msg string, fields map[string]any)

	// Close closes the logger and releases resources.
	Close() error
}

// BackupService is the backup surface the commands use.
type BackupService interface {
	Create(ctx context.Context, opts backup.CreateOptions) (*backup.Archived, error)
	Verify(ctx context.Context, name string, passphrase []byte) (*backup.File, *backup.Report, error)
	Restore(ctx context.Context, name string, passphrase []byte, opts backup.ImportOptions) (*backup.Report, *backup.ImportResult, error)
	List(ctx context.Context) ([]string, error)
	Exporter() *backup.Exporter
	Validator() *backup.Validator
	Importer() *backup.Importer
}
