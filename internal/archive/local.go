package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/ledgerbox/internal/fileutil"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Local stores backups as files in one directory.
type Local struct {
	dir string
}

// NewLocal creates a Local store rooted at dir. A leading "~/" is expanded.
func NewLocal(dir string) (*Local, error) {
	expanded, err := fileutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if expanded == "" {
		return nil, fileutil.ErrEmptyPath
	}
	return &Local{dir: expanded}, nil
}

// Dir returns the backing directory.
func (l *Local) Dir() string {
	return l.dir
}

// Put writes data atomically and returns the file path.
func (l *Local) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, dirPerm); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	target := filepath.Join(l.dir, name)
	if err := fileutil.WriteAtomic(target, data, filePerm); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return target, nil
}

// Get opens the named file.
func (l *Local) Get(_ context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(l.dir, name)) //nolint:gosec // name is validated to stay inside dir
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	return f, nil
}

// List returns the backup files in the directory. A missing directory holds
// no backups.
func (l *Local) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !IsBackupName(name) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
