package backup_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/metrics"
	"github.com/mrz1836/ledgerbox/internal/repository/memstore"
	"github.com/mrz1836/ledgerbox/internal/version"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

func TestExport_envelope(t *testing.T) {
	t.Parallel()

	file := exportFile(t, sampleRecords())

	assert.Equal(t, version.AppName, file.App.Name)
	assert.Equal(t, version.Version, file.App.Version)
	assert.Equal(t, backup.SchemaVersion, file.SchemaVersion)
	assert.Equal(t, fixedTime, file.ExportedAt)
	assert.Equal(t, backup.Owner{UserID: ownerID.String(), Phone: "+5511999990000"}, file.Owner)
	assert.Equal(t, backup.ChecksumAlgo, file.Checksum.Algo)
	assert.Nil(t, file.Meta.Notes)
	assert.NotEmpty(t, file.Meta.GeneratedBy)

	for typ, records := range sampleRecords() {
		assert.Equal(t, len(records), file.Counts.Get(typ), typ)
		require.Len(t, file.Data.Records(typ), len(records))
		for i, rec := range records {
			assert.JSONEq(t, rec, string(file.Data.Records(typ)[i]))
		}
	}

	require.NoError(t, backup.VerifyChecksum(file.Data, file.SchemaVersion, file.Checksum.Value))
}

func TestExport_notes(t *testing.T) {
	t.Parallel()

	exp := backup.NewExporter(seededSet(nil), owner, testOptions()...)
	file, err := exp.Export(context.Background(), backup.ExportOptions{Notes: "before migration"})
	require.NoError(t, err)
	require.NotNil(t, file.Meta.Notes)
	assert.Equal(t, "before migration", *file.Meta.Notes)
}

func TestExportJSON_format(t *testing.T) {
	t.Parallel()

	exp := backup.NewExporter(seededSet(sampleRecords()), owner, testOptions()...)
	raw, err := exp.ExportJSON(context.Background(), backup.ExportOptions{})
	require.NoError(t, err)

	assert.Contains(t, string(raw), "\n  \"schema_version\": \"1.0\",\n")
	assert.Contains(t, string(raw), `"exported_at": "2026-03-14T09:26:53Z"`)
	assert.Contains(t, string(raw), `"notes": null`)

	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &generic))
	for _, key := range []string{"app", "schema_version", "exported_at", "owner", "counts", "data", "checksum", "meta"} {
		assert.Contains(t, generic, key)
	}
}

func TestExport_requiresIdentity(t *testing.T) {
	t.Parallel()

	for name, identity := range map[string]auth.IdentityProvider{
		"nil provider":  nil,
		"anonymous":     auth.Static{},
		"empty context": auth.FromContext{},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			exp := backup.NewExporter(seededSet(sampleRecords()), identity, testOptions()...)
			_, err := exp.Export(context.Background(), backup.ExportOptions{})
			require.ErrorIs(t, err, ledgererr.ErrUnauthenticated)
			assert.Equal(t, ledgererr.ExitAuth, ledgererr.ExitCode(err))
		})
	}
}

func TestExport_failsWholeExportOnAnyListError(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	set := seededSet(sampleRecords())
	set[entity.TypeSuppliers] = &failingLister{Store: memstore.New(), err: errors.New("connection reset")}

	exp := backup.NewExporter(set, owner, backup.WithMetrics(m))
	file, err := exp.Export(context.Background(), backup.ExportOptions{})

	require.Error(t, err)
	assert.Nil(t, file)
	require.ErrorIs(t, err, ledgererr.ErrExportFailed)
	assert.Contains(t, err.Error(), "suppliers")
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "ledgerbox_exports_total"))
}

func TestExport_missingRepository(t *testing.T) {
	t.Parallel()

	set := seededSet(sampleRecords())
	delete(set, entity.TypeBanks)

	_, err := backup.NewExporter(set, owner, testOptions()...).Export(context.Background(), backup.ExportOptions{})
	require.ErrorIs(t, err, ledgererr.ErrExportFailed)
}
