package repository_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/repository"
	"github.com/mrz1836/ledgerbox/internal/repository/memstore"
)

func TestBatchIDFor(t *testing.T) {
	t.Parallel()

	a := repository.BatchIDFor("abc")
	b := repository.BatchIDFor("abc")
	c := repository.BatchIDFor("abd")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 5, int(a.Version()))
}

func TestSourceID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		record   string
		expected string
	}{
		{`{"id":"x1"}`, "x1"},
		{`{"id":42,"name":"n"}`, "42"},
		{`{"name":"no id"}`, ""},
		{`[1,2]`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, repository.SourceID(json.RawMessage(tt.record)), tt.record)
	}
}

func TestSet_For(t *testing.T) {
	t.Parallel()

	set := repository.Set{entity.TypeBanks: memstore.New()}

	repo, err := set.For(entity.TypeBanks)
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = set.For(entity.TypeSuppliers)
	require.ErrorIs(t, err, repository.ErrNoRepository)
	assert.Contains(t, err.Error(), "suppliers")
}

func TestImportKey_String(t *testing.T) {
	t.Parallel()

	key := repository.ImportKey{
		BatchID:  repository.BatchIDFor("sum"),
		Type:     entity.TypeBanks,
		Position: 3,
		SourceID: "b1",
	}
	assert.Contains(t, key.String(), "/banks/3/b1")
	assert.True(t, key.Conditional())
	assert.False(t, repository.ImportKey{SourceID: "b1"}.Conditional())
}
