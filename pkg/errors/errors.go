// Package errors provides structured error handling for ledgerbox.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input or invalid backup file
	ExitAuth       = 3 // No resolvable identity
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Backup belongs to another account
	ExitPartial    = 6 // Import finished with per-record failures
)

// LedgerError is the structured error type for ledgerbox.
type LedgerError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *LedgerError) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for LedgerError.
func (e *LedgerError) Is(target error) bool {
	var t *LedgerError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &LedgerError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &LedgerError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &LedgerError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Auth and ownership errors.
	ErrUnauthenticated = &LedgerError{
		Code:     "UNAUTHENTICATED",
		Message:  "no authenticated user identity",
		ExitCode: ExitAuth,
	}

	ErrPermission = &LedgerError{
		Code:     "PERMISSION_DENIED",
		Message:  "permission denied",
		ExitCode: ExitPermission,
	}

	// Backup-specific errors.
	ErrBackupNotFound = &LedgerError{
		Code:     "BACKUP_NOT_FOUND",
		Message:  "backup file not found",
		ExitCode: ExitNotFound,
	}

	ErrBackupCorrupted = &LedgerError{
		Code:     "BACKUP_CORRUPTED",
		Message:  "backup file is corrupted - checksum mismatch",
		ExitCode: ExitInput,
	}

	ErrInvalidFormat = &LedgerError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid backup format",
		ExitCode: ExitInput,
	}

	ErrDataTooLarge = &LedgerError{
		Code:     "DATA_TOO_LARGE",
		Message:  "backup file exceeds maximum size",
		ExitCode: ExitInput,
	}

	ErrValidationFailed = &LedgerError{
		Code:     "VALIDATION_FAILED",
		Message:  "backup failed validation",
		ExitCode: ExitInput,
	}

	ErrExportFailed = &LedgerError{
		Code:     "EXPORT_FAILED",
		Message:  "export failed",
		ExitCode: ExitGeneral,
	}

	ErrImportIncomplete = &LedgerError{
		Code:     "IMPORT_INCOMPLETE",
		Message:  "import finished with errors",
		ExitCode: ExitPartial,
	}

	ErrUnsupportedStrategy = &LedgerError{
		Code:     "UNSUPPORTED_STRATEGY",
		Message:  "import strategy not supported",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &LedgerError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted file",
		ExitCode: ExitAuth,
	}

	// Config-specific errors.
	ErrConfigNotFound = &LedgerError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &LedgerError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new LedgerError with the given code and message.
func New(code, message string) *LedgerError {
	return &LedgerError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var le *LedgerError
	if errors.As(err, &le) {
		return &LedgerError{
			Code:       le.Code,
			Message:    fmt.Sprintf("%s: %s", msg, le.Message),
			Details:    le.Details,
			Suggestion: le.Suggestion,
			Cause:      err,
			ExitCode:   le.ExitCode,
		}
	}

	return &LedgerError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var le *LedgerError
	if errors.As(err, &le) {
		return &LedgerError{
			Code:       le.Code,
			Message:    le.Message,
			Details:    details,
			Suggestion: le.Suggestion,
			Cause:      le.Cause,
			ExitCode:   le.ExitCode,
		}
	}

	return &LedgerError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var le *LedgerError
	if errors.As(err, &le) {
		return &LedgerError{
			Code:       le.Code,
			Message:    le.Message,
			Details:    le.Details,
			Suggestion: suggestion,
			Cause:      le.Cause,
			ExitCode:   le.ExitCode,
		}
	}

	return &LedgerError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var le *LedgerError
	if errors.As(err, &le) {
		return le.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
