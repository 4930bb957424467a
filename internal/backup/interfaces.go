package backup

import (
	"time"

	"github.com/mrz1836/ledgerbox/internal/metrics"
)

// Fields are structured log fields.
type Fields = map[string]any

// Logger is the interface for backup logging. The *Fields variants attach
// fields to the entry instead of formatting them into the message.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
	DebugFields(msg string, fields map[string]any)
	InfoFields(msg string, fields map[string]any)
	ErrorFields(msg string, fields map[string]any)
}

// MetricsRecorder receives export, validation and import outcomes.
type MetricsRecorder interface {
	RecordExport(duration time.Duration, err error)
	RecordValidation(valid bool)
	RecordIssue(level, issueType string)
	RecordImportedRecord(entityType, outcome string)
	RecordImport(duration time.Duration, success bool)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func (nopLogger) DebugFields(string, map[string]any) {}
func (nopLogger) InfoFields(string, map[string]any)  {}
func (nopLogger) ErrorFields(string, map[string]any) {}

// Compile-time check that the prometheus collectors satisfy MetricsRecorder.
var _ MetricsRecorder = (*metrics.Metrics)(nil)
