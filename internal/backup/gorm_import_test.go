package backup_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/repository/gormstore"
)

func TestImport_intoSQLiteStoreIsIdempotent(t *testing.T) {
	t.Parallel()

	db, err := gormstore.Open(gormstore.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	file := exportFile(t, sampleRecords())
	set := gormstore.NewSet(db, ownerID.String())
	im := newImporter(set)

	first, err := im.Import(context.Background(), file, backup.ImportOptions{ChunkSize: 4, Concurrency: 1})
	require.NoError(t, err)
	require.True(t, first.Success, first.Errors)
	assert.Equal(t, 11, first.TotalCreated())

	second, err := im.Import(context.Background(), file, backup.ImportOptions{ChunkSize: 4, Concurrency: 1})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.TotalCreated())
	assert.Equal(t, 11, second.TotalSkipped())
	assert.Equal(t, 2, second.Summary.Skipped[entity.TypeBankAccounts])

	// A fresh export of the restored store validates cleanly, profiles aside.
	exp := backup.NewExporter(set, owner, testOptions()...)
	again, err := exp.Export(context.Background(), backup.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Counts.Profiles)
	assert.Equal(t, 3, again.Counts.Transactions)

	raw, err := again.Marshal()
	require.NoError(t, err)
	assert.True(t, newValidator(owner).Validate(context.Background(), raw).Valid)
}

func TestImport_intoSQLiteStoreKeepsRecordsSharingAnID(t *testing.T) {
	t.Parallel()

	db, err := gormstore.Open(gormstore.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	file := exportFile(t, map[entity.Type][]string{
		entity.TypeCategories: {`{"id":7,"name":"Rent"}`, `{"id":"7","name":"Food"}`},
	})
	set := gormstore.NewSet(db, ownerID.String())
	im := newImporter(set)

	first, err := im.Import(context.Background(), file, backup.ImportOptions{Concurrency: 1})
	require.NoError(t, err)
	require.True(t, first.Success, first.Errors)
	assert.Equal(t, 2, first.Summary.Created[entity.TypeCategories])
	assert.Equal(t, 0, first.Summary.Skipped[entity.TypeCategories])

	repo, err := set.For(entity.TypeCategories)
	require.NoError(t, err)
	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.JSONEq(t, `{"id":7,"name":"Rent"}`, string(stored[0]))
	assert.JSONEq(t, `{"id":"7","name":"Food"}`, string(stored[1]))

	second, err := im.Import(context.Background(), file, backup.ImportOptions{Concurrency: 1})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.TotalCreated())
	assert.Equal(t, 2, second.Summary.Skipped[entity.TypeCategories])
}
