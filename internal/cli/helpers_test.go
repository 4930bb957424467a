package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/archive"
	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/config"
	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/metrics"
	"github.com/mrz1836/ledgerbox/internal/output"
	"github.com/mrz1836/ledgerbox/internal/repository"
	"github.com/mrz1836/ledgerbox/internal/repository/memstore"
	"github.com/mrz1836/ledgerbox/internal/seal"
)

func TestMain(m *testing.M) {
	seal.SetScryptWorkFactor(10)
	os.Exit(m.Run())
}

//nolint:gochecknoglobals // test fixtures
var (
	ownerID = uuid.MustParse("6b0f3c1e-4a7d-4c2b-9e5f-1a2b3c4d5e6f")
	owner   = auth.Static{UserID: ownerID, Phone: "+5511999990000"}
)

func ledgerRecords() map[entity.Type][]string {
	return map[entity.Type][]string{
		entity.TypeCategories: {`{"id":"c-1","name":"Rent","type":"expense"}`},
		entity.TypeBanks:      {`{"id":"b-1","name":"First National","code":"001"}`},
		entity.TypeBankAccounts: {
			`{"id":"ba-1","bank_id":"b-1","name":"Checking","balance":"1500.00"}`,
			`{"id":"ba-2","bank_id":"b-1","name":"Savings","balance":"250.10"}`,
		},
		entity.TypeTransactions: {
			`{"id":"t-1","type":"transfer","amount":"100.00","from_account_id":"ba-1","to_account_id":"ba-2"}`,
		},
	}
}

// testEnv is one CLI invocation environment backed by in-memory repositories
// and a local archive.
type testEnv struct {
	cc     *CommandContext
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	stores map[entity.Type]*memstore.Store
}

func newTestEnv(t *testing.T, format output.Format, archiveDir string, records map[entity.Type][]string) *testEnv {
	t.Helper()

	store, err := archive.NewLocal(archiveDir)
	require.NoError(t, err)

	set := make(repository.Set)
	stores := make(map[entity.Type]*memstore.Store)
	for _, typ := range entity.AllTypes() {
		raws := make([]json.RawMessage, 0, len(records[typ]))
		for _, r := range records[typ] {
			raws = append(raws, json.RawMessage(r))
		}
		st := memstore.New(raws...)
		st.Dedup = true
		set[typ] = st
		stores[typ] = st
	}

	cfg := config.DefaultsFor(t.TempDir())
	cfg.Archive.Dir = archiveDir
	stdout := &bytes.Buffer{}
	cc := NewCommandContext(cfg, config.NullLogger(), output.NewFormatter(format, stdout))
	cc.Backups = backup.NewService(store, set, owner,
		backup.WithMetrics(metrics.New(prometheus.NewRegistry())))

	resetFlags(t)
	return &testEnv{cc: cc, stdout: stdout, stderr: &bytes.Buffer{}, stores: stores}
}

func (e *testEnv) run(fn func(*cobra.Command, []string) error, args ...string) error {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	SetCmdContext(cmd, e.cc)
	return fn(cmd, args)
}

// resetFlags restores every command flag variable to its default now and
// after the test.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		exportNotes, exportOut, exportEncrypt = "", "", false
		validateInput = ""
		importInput, importDryRun, importStrategy = "", false, string(backup.StrategyMerge)
		importChunkSize, importConcurrency, importRateLimit = 0, 0, -1
		tokenUserID, tokenPhone, tokenTTL = "", "", 24*time.Hour
		promptPasswordFn = promptPassword
		promptNewPassphraseFn = promptNewPassphrase
	}
	reset()
	t.Cleanup(reset)
}

// fixedPassword answers every prompt with a fresh copy of pw.
func fixedPassword(pw string) func(string) ([]byte, error) {
	return func(string) ([]byte, error) {
		return []byte(pw), nil
	}
}
