package backup_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/metrics"
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
	ownerID    = uuid.MustParse("6b0f3c1e-4a7d-4c2b-9e5f-1a2b3c4d5e6f")
	strangerID = uuid.MustParse("0d9e8f7a-6b5c-4d3e-8f2a-1b0c9d8e7f6a")
	owner      = auth.Static{UserID: ownerID, Phone: "+5511999990000"}
	stranger   = auth.Static{UserID: strangerID, Phone: "+5511888880000"}
	fixedTime  = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
)

// sampleRecords is a small, fully consistent dataset.
func sampleRecords() map[entity.Type][]string {
	return map[entity.Type][]string{
		entity.TypeProfiles: {
			`{"id":"p-1","user_id":"6b0f3c1e-4a7d-4c2b-9e5f-1a2b3c4d5e6f","full_name":"Ana Souza","phone":"+5511999990000"}`,
		},
		entity.TypeCategories: {
			`{"id":"c-1","name":"Rent","type":"expense"}`,
			`{"id":"c-2","name":"Salary","type":"income"}`,
		},
		entity.TypeSuppliers: {
			`{"id":"s-1","name":"Landlord & Sons <LLC>"}`,
		},
		entity.TypeBanks: {
			`{"id":"b-1","name":"First National","code":"001"}`,
		},
		entity.TypeBankAccounts: {
			`{"id":"ba-1","bank_id":"b-1","name":"Checking","balance":"1500.00"}`,
			`{"id":"ba-2","bank_id":"b-1","name":"Savings","balance":250.10}`,
		},
		entity.TypeAccountsPayable: {
			`{"id":"ap-1","description":"October rent","amount":"1200.00","category_id":"c-1","supplier_id":"s-1","bank_account_id":"ba-1"}`,
		},
		entity.TypeAccountsReceivable: {
			`{"id":"ar-1","description":"Consulting","amount":900,"category_id":"c-2","bank_account_id":"ba-1"}`,
		},
		entity.TypeTransactions: {
			`{"id":"t-1","type":"expense","amount":"1200.00","from_account_id":"ba-1","accounts_payable_id":"ap-1","category_id":"c-1"}`,
			`{"id":"t-2","type":"income","amount":900,"to_account_id":"ba-1","accounts_receivable_id":"ar-1"}`,
			`{"id":"t-3","type":"transfer","amount":"100.00","from_account_id":"ba-1","to_account_id":"ba-2"}`,
		},
	}
}

func raws(records []string) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = json.RawMessage(r)
	}
	return out
}

// seededSet builds in-memory repositories holding records.
func seededSet(records map[entity.Type][]string) repository.Set {
	set := make(repository.Set)
	for _, t := range entity.AllTypes() {
		set[t] = memstore.New(raws(records[t])...)
	}
	return set
}

func testOptions() []backup.Option {
	return []backup.Option{
		backup.WithMetrics(metrics.New(prometheus.NewRegistry())),
		backup.WithClock(func() time.Time { return fixedTime }),
	}
}

func exportFile(t *testing.T, records map[entity.Type][]string) *backup.File {
	t.Helper()
	exp := backup.NewExporter(seededSet(records), owner, testOptions()...)
	file, err := exp.Export(context.Background(), backup.ExportOptions{})
	require.NoError(t, err)
	return file
}

func exportBytes(t *testing.T, records map[entity.Type][]string) []byte {
	t.Helper()
	raw, err := exportFile(t, records).Marshal()
	require.NoError(t, err)
	return raw
}

// mutate decodes raw into a generic document, applies fn and re-encodes it.
// Number literals survive unchanged.
func mutate(t *testing.T, raw []byte, fn func(doc map[string]any)) []byte {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc))
	fn(doc)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func issuesOf(report *backup.Report, level backup.Level, typ backup.IssueType) []backup.Issue {
	var out []backup.Issue
	for _, issue := range report.Issues {
		if issue.Level == level && issue.Type == typ {
			out = append(out, issue)
		}
	}
	return out
}

var errInsertRejected = errors.New("insert rejected")

// flakyRepo fails Create for one source id and otherwise stores records.
type flakyRepo struct {
	*memstore.Store
	failID string
}

func (f *flakyRepo) Create(ctx context.Context, key repository.ImportKey, rec json.RawMessage) error {
	if key.SourceID == f.failID {
		return errInsertRejected
	}
	return f.Store.Create(ctx, key, rec)
}

// failingLister fails every List call.
type failingLister struct {
	*memstore.Store
	err error
}

func (f *failingLister) List(context.Context) ([]json.RawMessage, error) {
	return nil, f.err
}

// recordingSet wraps stores and records the entity type of every create in
// call order.
type recordingSet struct {
	mu    sync.Mutex
	order []entity.Type
}

type recordingRepo struct {
	*memstore.Store
	typ entity.Type
	log *recordingSet
}

func (r *recordingRepo) Create(ctx context.Context, key repository.ImportKey, rec json.RawMessage) error {
	r.log.mu.Lock()
	r.log.order = append(r.log.order, r.typ)
	r.log.mu.Unlock()
	return r.Store.Create(ctx, key, rec)
}

func (rs *recordingSet) set() repository.Set {
	set := make(repository.Set)
	for _, t := range entity.AllTypes() {
		set[t] = &recordingRepo{Store: memstore.New(), typ: t, log: rs}
	}
	return set
}

// distinctRuns collapses consecutive repeats.
func distinctRuns(types []entity.Type) []entity.Type {
	var out []entity.Type
	for _, t := range types {
		if len(out) == 0 || out[len(out)-1] != t {
			out = append(out, t)
		}
	}
	return out
}
