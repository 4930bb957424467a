package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

func TestMergeStages(t *testing.T) {
	t.Parallel()

	stages := MergeStages(0)
	assert.Len(t, stages, 7)
	assert.Equal(t, entity.TypeCategories, stages[0].Type)
	assert.Equal(t, entity.TypeTransactions, stages[len(stages)-1].Type)
	for _, st := range stages {
		assert.Equal(t, DefaultChunkSize, st.ChunkSize)
		assert.NotEqual(t, entity.TypeProfiles, st.Type)
	}

	assert.Equal(t, 7, MergeStages(7)[3].ChunkSize)
}

func TestChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"empty", 0, 3, []int{}},
		{"exact", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"smaller than chunk", 2, 50, []int{2}},
		{"default size", 51, 0, []int{50, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			items := make([]int, tt.n)
			for i := range items {
				items[i] = i
			}

			chunks := chunk(items, tt.size)
			sizes := make([]int, len(chunks))
			next := 0
			for i, c := range chunks {
				sizes[i] = len(c)
				for _, v := range c {
					assert.Equal(t, next, v)
					next++
				}
			}
			assert.Equal(t, tt.sizes, sizes)
		})
	}
}

func TestChunk_appendDoesNotClobberNeighbor(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4}
	chunks := chunk(items, 2)
	_ = append(chunks[0], 99)
	assert.Equal(t, []int{1, 2, 3, 4}, items)
}
