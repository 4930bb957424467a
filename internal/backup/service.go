package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mrz1836/ledgerbox/internal/archive"
	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/repository"
	"github.com/mrz1836/ledgerbox/internal/seal"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// FilenamePrefix starts the name of every archived backup.
const FilenamePrefix = "ledgerbox-backup-"

// Service provides backup operations over an archive store.
type Service struct {
	store     archive.Store
	exporter  *Exporter
	validator *Validator
	importer  *Importer
	opts      options
}

// NewService creates a backup service. The same repositories are read on
// export and written on restore.
func NewService(store archive.Store, repos repository.Set, identity auth.IdentityProvider, opts ...Option) *Service {
	return &Service{
		store:     store,
		exporter:  NewExporter(repos, identity, opts...),
		validator: NewValidator(identity, opts...),
		importer:  NewImporter(repos, opts...),
		opts:      newOptions(opts),
	}
}

// CreateOptions configures Create.
type CreateOptions struct {
	Notes string

	// Passphrase seals the archived file with age when set.
	// The caller should zero it after Create returns.
	Passphrase []byte
}

// Archived describes a backup stored by Create.
type Archived struct {
	File     *File
	Name     string
	Location string
	Sealed   bool
}

// Create exports the dataset and stores it in the archive.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*Archived, error) {
	file, err := s.exporter.Export(ctx, ExportOptions{Notes: opts.Notes})
	if err != nil {
		return nil, err
	}

	data, err := file.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: encoding backup: %w", ledgererr.ErrExportFailed, err)
	}

	name := FilenamePrefix + file.ExportedAt.Format("20060102-150405") + Extension
	if len(opts.Passphrase) > 0 {
		data, err = seal.Encrypt(data, string(opts.Passphrase))
		if err != nil {
			return nil, fmt.Errorf("sealing backup: %w", err)
		}
		name += seal.Extension
	}

	location, err := s.store.Put(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledgererr.ErrExportFailed, err)
	}

	s.opts.logger.InfoFields("archived backup", Fields{"name": name, "location": location})
	return &Archived{File: file, Name: name, Location: location, Sealed: len(opts.Passphrase) > 0}, nil
}

// Verify validates an archived backup. The returned error covers only
// failures to retrieve or unseal the file; content problems are reported
// in the Report.
func (s *Service) Verify(ctx context.Context, name string, passphrase []byte) (*File, *Report, error) {
	rc, err := s.open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rc.Close() }()

	r, err := Unseal(rc, passphrase)
	if err != nil {
		return nil, nil, err
	}

	file, report := s.validator.ValidateReader(ctx, r)
	return file, report, nil
}

// Restore validates an archived backup and imports it when the report has
// no errors. The report is returned in every case it could be built.
func (s *Service) Restore(ctx context.Context, name string, passphrase []byte, opts ImportOptions) (*Report, *ImportResult, error) {
	file, report, err := s.Verify(ctx, name, passphrase)
	if err != nil {
		return nil, nil, err
	}
	if !report.Valid {
		return report, nil, ledgererr.WithDetails(ledgererr.ErrValidationFailed, map[string]string{
			"backup": name,
			"errors": strconv.Itoa(len(report.Errors())),
		})
	}

	result, err := s.importer.Import(ctx, file, opts)
	if err != nil {
		return report, nil, err
	}
	return report, result, nil
}

// List returns the archived backup names.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Exporter returns the exporter used by Create.
func (s *Service) Exporter() *Exporter {
	return s.exporter
}

// Validator returns the validator used for archived and local files.
func (s *Service) Validator() *Validator {
	return s.validator
}

// Importer returns the importer used by Restore.
func (s *Service) Importer() *Importer {
	return s.importer
}

func (s *Service) open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.store.Get(ctx, name)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, ledgererr.WithDetails(ledgererr.ErrBackupNotFound, map[string]string{"backup": name})
	}
	if err != nil {
		return nil, fmt.Errorf("opening backup %s: %w", name, err)
	}
	return rc, nil
}

// Unseal returns the plaintext of r, decrypting it when it is an age file.
func Unseal(r io.Reader, passphrase []byte) (io.Reader, error) {
	r, sealed := seal.Sniff(r)
	if !sealed {
		return r, nil
	}
	if len(passphrase) == 0 {
		return nil, ledgererr.WithSuggestion(ledgererr.ErrDecryptionFailed,
			"the backup is encrypted; provide its passphrase")
	}

	plain, err := seal.Open(r, string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledgererr.ErrDecryptionFailed, err)
	}
	return plain, nil
}
