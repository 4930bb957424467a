// Package archive stores produced backup files on a local directory or an
// S3-compatible bucket.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrNotFound indicates no archived backup has the requested name.
	ErrNotFound = errors.New("archived backup not found")

	// ErrInvalidName indicates a backup name that is empty or escapes the archive.
	ErrInvalidName = errors.New("invalid backup name")
)

// Store keeps backup files by name.
type Store interface {
	// Put stores data under name and returns its location.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get opens the backup stored under name.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns the names of stored backups in ascending order.
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that are empty or contain path elements.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// IsBackupName reports whether name looks like a backup file, sealed or not.
func IsBackupName(name string) bool {
	name = strings.TrimSuffix(name, ".age")
	return strings.HasSuffix(name, ".json")
}
