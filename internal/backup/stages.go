package backup

import "github.com/mrz1836/ledgerbox/internal/entity"

// DefaultChunkSize is the number of records created per chunk.
const DefaultChunkSize = 50

// Stage is one step of an import: every record of one entity type,
// processed in chunks.
type Stage struct {
	Type      entity.Type
	ChunkSize int
}

// MergeStages returns the merge import plan in dependency order. Parents
// come before the records that reference them. Profiles are bound to the
// account identity and are never replayed.
func MergeStages(chunkSize int) []Stage {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	order := []entity.Type{
		entity.TypeCategories,
		entity.TypeSuppliers,
		entity.TypeBanks,
		entity.TypeBankAccounts,
		entity.TypeAccountsPayable,
		entity.TypeAccountsReceivable,
		entity.TypeTransactions,
	}
	stages := make([]Stage, len(order))
	for i, t := range order {
		stages[i] = Stage{Type: t, ChunkSize: chunkSize}
	}
	return stages
}

// chunk splits records into consecutive slices of at most size elements.
// The returned slices share the backing array of records.
func chunk[T any](records []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]T, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end:end])
	}
	return chunks
}
