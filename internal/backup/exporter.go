package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/repository"
	"github.com/mrz1836/ledgerbox/internal/version"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// ExportOptions configures one export.
type ExportOptions struct {
	// Notes is stored in meta.notes when non-empty.
	Notes string
}

// Exporter snapshots every entity collection into a File.
type Exporter struct {
	repos    repository.Set
	identity auth.IdentityProvider
	opts     options
}

// NewExporter creates an Exporter reading from repos on behalf of identity.
func NewExporter(repos repository.Set, identity auth.IdentityProvider, opts ...Option) *Exporter {
	return &Exporter{repos: repos, identity: identity, opts: newOptions(opts)}
}

// Export reads every collection and assembles a checksummed File. Any failed
// read fails the whole export; no partial snapshot is produced.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (file *File, err error) {
	start := e.opts.now()
	defer func() {
		e.opts.metrics.RecordExport(e.opts.now().Sub(start), err)
	}()

	if e.identity == nil {
		return nil, ledgererr.ErrUnauthenticated
	}
	id, err := e.identity.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}

	data, err := e.fetchAll(ctx)
	if err != nil {
		e.opts.logger.Error("export failed: %v", err)
		return nil, err
	}

	checksum, err := ComputeChecksum(data, e.opts.schemaVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledgererr.ErrExportFailed, err)
	}

	file = &File{
		App:           App{Name: version.AppName, Version: version.Version},
		SchemaVersion: e.opts.schemaVersion,
		ExportedAt:    e.opts.now().UTC().Truncate(time.Second),
		Owner:         Owner{UserID: id.UserID.String(), Phone: id.Phone},
		Counts:        data.Counts(),
		Data:          data,
		Checksum:      ChecksumInfo{Algo: ChecksumAlgo, Value: checksum},
		Meta:          Meta{GeneratedBy: e.opts.generatedBy},
	}
	if opts.Notes != "" {
		notes := opts.Notes
		file.Meta.Notes = &notes
	}

	e.opts.logger.InfoFields("exported backup", Fields{
		"records":  file.Counts.Total(),
		"checksum": checksum,
	})
	return file, nil
}

// ExportJSON exports and serializes the File as indented JSON.
func (e *Exporter) ExportJSON(ctx context.Context, opts ExportOptions) ([]byte, error) {
	file, err := e.Export(ctx, opts)
	if err != nil {
		return nil, err
	}
	out, err := file.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: encoding backup: %w", ledgererr.ErrExportFailed, err)
	}
	return out, nil
}

// fetchAll lists all collections concurrently. The first failure cancels the
// remaining reads.
func (e *Exporter) fetchAll(ctx context.Context) (Data, error) {
	types := entity.AllTypes()
	results := make([][]json.RawMessage, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			repo, err := e.repos.For(t)
			if err != nil {
				return fmt.Errorf("%w: %w", ledgererr.ErrExportFailed, err)
			}
			records, err := repo.List(gctx)
			if err != nil {
				return fmt.Errorf("%w: listing %s: %w", ledgererr.ErrExportFailed, t, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Data{}, err
	}

	var data Data
	for i, t := range types {
		data.Set(t, results[i])
	}
	return data, nil
}
