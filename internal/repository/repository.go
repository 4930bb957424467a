// Package repository declares the per-entity persistence boundary used by
// backup export and import.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

var (
	// ErrAlreadyImported is returned by Create when the store already holds a
	// record written under the same ImportKey. Importers count it as skipped.
	ErrAlreadyImported = errors.New("record already imported")

	// ErrNoRepository indicates a Set has no repository for an entity type.
	ErrNoRepository = errors.New("no repository for entity type")
)

// Repository lists and creates the records of one entity type.
type Repository interface {
	// List returns every record of the entity type owned by the caller.
	List(ctx context.Context) ([]json.RawMessage, error)

	// Create stores a new record. Stores that support conditional inserts
	// return ErrAlreadyImported when key was seen before.
	Create(ctx context.Context, key ImportKey, record json.RawMessage) error
}

// Set maps each entity type to its repository.
type Set map[entity.Type]Repository

// For returns the repository for t.
func (s Set) For(t entity.Type) (Repository, error) {
	repo, ok := s[t]
	if !ok || repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRepository, t)
	}
	return repo, nil
}

// ImportKey identifies one record of one import batch. Replaying the same
// backup produces the same keys, which lets a store skip records it has
// already written instead of duplicating them.
//
// Position makes the key unique within a batch: two records sharing an id
// are still two keys. SourceID is carried for tracing only.
type ImportKey struct {
	BatchID  uuid.UUID
	Type     entity.Type
	Position int
	SourceID string
}

// Conditional reports whether a store should skip a repeated key.
func (k ImportKey) Conditional() bool {
	return k.BatchID != uuid.Nil
}

// String renders the key as batch/type/position/source.
func (k ImportKey) String() string {
	return fmt.Sprintf("%s/%s/%d/%s", k.BatchID, k.Type, k.Position, k.SourceID)
}

// batchNamespace scopes batch identifiers derived from backup checksums.
var batchNamespace = uuid.MustParse("8f5b7d0e-3c1a-5e2b-9a47-6d2f1c0b4e93") //nolint:gochecknoglobals // fixed namespace

// BatchIDFor derives a stable batch identifier from a backup checksum.
func BatchIDFor(checksum string) uuid.UUID {
	return uuid.NewSHA1(batchNamespace, []byte(checksum))
}

// SourceID extracts the "id" field of a raw record. Records without an id
// get an empty SourceID.
func SourceID(record json.RawMessage) string {
	var probe struct {
		ID entity.ID[struct{}] `json:"id"`
	}
	if err := json.Unmarshal(record, &probe); err != nil {
		return ""
	}
	return probe.ID.String()
}
