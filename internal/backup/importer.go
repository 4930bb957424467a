package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/metrics"
	"github.com/mrz1836/ledgerbox/internal/repository"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// Strategy selects how imported records are reconciled with existing data.
type Strategy string

// Import strategies.
const (
	// StrategyMerge creates every record of the backup next to existing data.
	StrategyMerge Strategy = "merge"

	// StrategyReplace would wipe existing data first. It is not supported.
	StrategyReplace Strategy = "replace"
)

// ParseStrategy parses a strategy name. An empty name means merge.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyMerge:
		return StrategyMerge, nil
	case StrategyReplace:
		return StrategyReplace, nil
	default:
		return "", fmt.Errorf("%w: %q", ledgererr.ErrUnsupportedStrategy, s)
	}
}

// ImportOptions configures one import.
type ImportOptions struct {
	// DryRun performs no writes and reports success.
	DryRun bool

	// Strategy defaults to merge.
	Strategy Strategy

	// ChunkSize is the number of records per chunk. Defaults to DefaultChunkSize.
	ChunkSize int

	// Concurrency bounds in-flight creates within a chunk. Defaults to ChunkSize.
	Concurrency int

	// RateLimit caps creates per second across the import. Zero is unlimited.
	RateLimit float64
}

// Importer replays backup records into repositories.
type Importer struct {
	repos repository.Set
	opts  options
}

// NewImporter creates an Importer writing to repos.
func NewImporter(repos repository.Set, opts ...Option) *Importer {
	return &Importer{repos: repos, opts: newOptions(opts)}
}

// Import replays file into the repositories. Record failures never abort the
// import; they are counted and listed in the result. An error is returned
// only when the import cannot start.
//
// The caller is expected to have validated file first. Import does not
// modify file.
func (im *Importer) Import(ctx context.Context, file *File, opts ImportOptions) (*ImportResult, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no backup to import", ledgererr.ErrInvalidInput)
	}

	if opts.DryRun {
		im.opts.logger.Info("dry run: skipping import of %d records", file.Counts.Total())
		return &ImportResult{
			Success: true,
			DryRun:  true,
			Summary: newSummary(nil),
			Errors:  []string{},
			BatchID: repository.BatchIDFor(file.Checksum.Value),
		}, nil
	}

	switch opts.Strategy {
	case "", StrategyMerge:
	default:
		return nil, fmt.Errorf("%w: %q", ledgererr.ErrUnsupportedStrategy, opts.Strategy)
	}

	start := im.opts.now()
	stages := MergeStages(opts.ChunkSize)
	run := &importRun{
		importer: im,
		batchID:  repository.BatchIDFor(file.Checksum.Value),
		limiter:  newLimiter(opts.RateLimit),
		result: &ImportResult{
			Summary: newSummary(stages),
			Errors:  []string{},
		},
	}
	run.result.BatchID = run.batchID

	im.opts.logger.InfoFields("importing backup", Fields{
		"batch_id": run.batchID.String(),
		"records":  file.Counts.Total(),
	})

	for _, st := range stages {
		concurrency := opts.Concurrency
		if concurrency <= 0 || concurrency > st.ChunkSize {
			concurrency = st.ChunkSize
		}
		run.stage(ctx, st, file.Data.Records(st.Type), concurrency)
	}

	run.result.Duration = im.opts.now().Sub(start)
	run.result.Success = len(run.result.Errors) == 0
	im.opts.metrics.RecordImport(run.result.Duration, run.result.Success)
	im.opts.logger.InfoFields("import finished", Fields{
		"batch_id": run.batchID.String(),
		"created":  run.result.TotalCreated(),
		"skipped":  run.result.TotalSkipped(),
		"errors":   len(run.result.Errors),
		"duration": run.result.Duration.String(),
	})

	return run.result, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
}

// importRun holds the state of one import. Results are only touched from
// the goroutine calling Import.
type importRun struct {
	importer *Importer
	batchID  uuid.UUID
	limiter  *rate.Limiter
	result   *ImportResult
}

func (r *importRun) stage(ctx context.Context, st Stage, records []json.RawMessage, concurrency int) {
	log := r.importer.opts.logger

	repo, err := r.importer.repos.For(st.Type)
	if err != nil {
		for i, rec := range records {
			r.fail(st.Type, i, rec, err)
		}
		return
	}

	for n, part := range chunk(records, st.ChunkSize) {
		offset := n * st.ChunkSize
		outcomes := r.createChunk(ctx, repo, st.Type, offset, part, concurrency)
		for j, err := range outcomes {
			switch {
			case err == nil:
				r.result.Summary.Created[st.Type]++
				r.importer.opts.metrics.RecordImportedRecord(st.Type.String(), metrics.OutcomeCreated)
			case errors.Is(err, repository.ErrAlreadyImported):
				r.result.Summary.Skipped[st.Type]++
				r.importer.opts.metrics.RecordImportedRecord(st.Type.String(), metrics.OutcomeSkipped)
			default:
				r.fail(st.Type, offset+j, part[j], err)
			}
		}
		log.DebugFields("imported chunk", Fields{
			"batch_id":    r.batchID.String(),
			"entity_type": st.Type.String(),
			"chunk":       n,
			"size":        len(part),
		})
	}
}

// createChunk creates every record of part with at most concurrency calls in
// flight. offset is the position of part[0] within its entity type. Outcomes
// are returned in record order.
func (r *importRun) createChunk(ctx context.Context, repo repository.Repository, t entity.Type, offset int, part []json.RawMessage, concurrency int) []error {
	outcomes := make([]error, len(part))
	sem := semaphore.NewWeighted(int64(concurrency))

	var wg sync.WaitGroup
	for i, rec := range part {
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = err
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if r.limiter != nil {
				if err := r.limiter.Wait(ctx); err != nil {
					outcomes[i] = err
					return
				}
			}
			key := repository.ImportKey{
				BatchID:  r.batchID,
				Type:     t,
				Position: offset + i,
				SourceID: repository.SourceID(rec),
			}
			outcomes[i] = repo.Create(ctx, key, rec)
		}()
	}
	wg.Wait()

	return outcomes
}

func (r *importRun) fail(t entity.Type, index int, rec json.RawMessage, err error) {
	at := locator{typ: t, index: index, id: repository.SourceID(rec)}
	msg := fmt.Sprintf("%s: %v", at, err)

	r.result.Summary.Errors[t]++
	r.result.Errors = append(r.result.Errors, msg)
	r.importer.opts.metrics.RecordImportedRecord(t.String(), metrics.OutcomeFailed)
	r.importer.opts.logger.ErrorFields("import failed", Fields{
		"batch_id":    r.batchID.String(),
		"entity_type": t.String(),
		"index":       index,
		"error":       err.Error(),
	})
}
