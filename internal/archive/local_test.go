package archive_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/archive"
)

func TestLocal_PutGetList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "backups")
	store, err := archive.NewLocal(dir)
	require.NoError(t, err)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names, "missing directory holds no backups")

	loc, err := store.Put(ctx, "b-2.json", []byte(`{"n":2}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b-2.json"), loc)

	_, err = store.Put(ctx, "b-1.json.age", []byte("sealed"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-1.json.age", "b-2.json"}, names)

	rc, err := store.Get(ctx, "b-2.json")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(data))

	info, err := os.Stat(loc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLocal_GetMissing(t *testing.T) {
	t.Parallel()

	store, err := archive.NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "absent.json")
	require.ErrorIs(t, err, archive.ErrNotFound)
}

func TestLocal_RejectsEscapingNames(t *testing.T) {
	t.Parallel()

	store, err := archive.NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../x.json", "a/b.json", `a\b.json`} {
		_, err := store.Put(context.Background(), name, []byte("{}"))
		require.ErrorIs(t, err, archive.ErrInvalidName, name)
	}
}

func TestIsBackupName(t *testing.T) {
	t.Parallel()

	assert.True(t, archive.IsBackupName("a.json"))
	assert.True(t, archive.IsBackupName("a.json.age"))
	assert.False(t, archive.IsBackupName("a.age"))
	assert.False(t, archive.IsBackupName("a.txt"))
}
