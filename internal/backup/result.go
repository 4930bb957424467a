package backup

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

// Summary counts import outcomes per entity type.
type Summary struct {
	Created map[entity.Type]int `json:"created"`
	Updated map[entity.Type]int `json:"updated"`
	Deleted map[entity.Type]int `json:"deleted"`
	Skipped map[entity.Type]int `json:"skipped"`
	Errors  map[entity.Type]int `json:"errors"`
}

func newSummary(stages []Stage) Summary {
	s := Summary{
		Created: make(map[entity.Type]int, len(stages)),
		Updated: make(map[entity.Type]int, len(stages)),
		Deleted: make(map[entity.Type]int, len(stages)),
		Skipped: make(map[entity.Type]int, len(stages)),
		Errors:  make(map[entity.Type]int, len(stages)),
	}
	for _, st := range stages {
		s.Created[st.Type] = 0
		s.Skipped[st.Type] = 0
		s.Errors[st.Type] = 0
	}
	return s
}

// ImportResult is the outcome of one import attempt. Per-record failures are
// collected here instead of being returned as errors.
type ImportResult struct {
	Success  bool          `json:"success"`
	Summary  Summary       `json:"summary"`
	Errors   []string      `json:"errors"`
	Duration time.Duration `json:"duration"`
	BatchID  uuid.UUID     `json:"batch_id"`
	DryRun   bool          `json:"dry_run,omitempty"`
}

// TotalSkipped returns the number of records skipped as already imported.
func (r *ImportResult) TotalSkipped() int {
	total := 0
	for _, n := range r.Summary.Skipped {
		total += n
	}
	return total
}

// TotalCreated returns the number of records created across all types.
func (r *ImportResult) TotalCreated() int {
	total := 0
	for _, n := range r.Summary.Created {
		total += n
	}
	return total
}
