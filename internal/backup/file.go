// Package backup exports a user's bookkeeping dataset to a checksummed,
// self-contained JSON file and validates and imports such files.
package backup

import (
	"encoding/json"
	"time"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

const (
	// SchemaVersion is the backup format version produced and accepted.
	SchemaVersion = "1.0"

	// ChecksumAlgo is the only supported checksum algorithm.
	ChecksumAlgo = "sha256"

	// DefaultMaxFileSize is the largest backup file accepted for validation.
	DefaultMaxFileSize int64 = 50 << 20

	// Extension is the file extension for backups.
	Extension = ".json"
)

// File is a complete backup. It is produced once by the Exporter and never
// modified afterwards.
type File struct {
	App           App          `json:"app"`
	SchemaVersion string       `json:"schema_version"`
	ExportedAt    time.Time    `json:"exported_at"`
	Owner         Owner        `json:"owner"`
	Counts        Counts       `json:"counts"`
	Data          Data         `json:"data"`
	Checksum      ChecksumInfo `json:"checksum"`
	Meta          Meta         `json:"meta"`
}

// App identifies the producer of a backup.
type App struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Owner binds a backup to one account.
type Owner struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone"`
}

// ChecksumInfo holds the digest over the canonical data payload.
type ChecksumInfo struct {
	Algo  string `json:"algo"`
	Value string `json:"value"`
}

// Meta holds free-form provenance.
type Meta struct {
	GeneratedBy string  `json:"generated_by"`
	Notes       *string `json:"notes"`
}

// Counts holds the number of records per entity type.
type Counts struct {
	Profiles           int `json:"profiles"`
	Categories         int `json:"categories"`
	Suppliers          int `json:"suppliers"`
	Banks              int `json:"banks"`
	BankAccounts       int `json:"bank_accounts"`
	AccountsPayable    int `json:"accounts_payable"`
	AccountsReceivable int `json:"accounts_receivable"`
	Transactions       int `json:"transactions"`
}

// Get returns the count for t.
func (c Counts) Get(t entity.Type) int {
	if p := c.field(t); p != nil {
		return *p
	}
	return 0
}

// Set stores the count for t.
func (c *Counts) Set(t entity.Type, n int) {
	if p := c.field(t); p != nil {
		*p = n
	}
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, t := range entity.AllTypes() {
		total += c.Get(t)
	}
	return total
}

// Map returns the counts keyed by entity type.
func (c Counts) Map() map[entity.Type]int {
	out := make(map[entity.Type]int, len(entity.AllTypes()))
	for _, t := range entity.AllTypes() {
		out[t] = c.Get(t)
	}
	return out
}

func (c *Counts) field(t entity.Type) *int {
	switch t {
	case entity.TypeProfiles:
		return &c.Profiles
	case entity.TypeCategories:
		return &c.Categories
	case entity.TypeSuppliers:
		return &c.Suppliers
	case entity.TypeBanks:
		return &c.Banks
	case entity.TypeBankAccounts:
		return &c.BankAccounts
	case entity.TypeAccountsPayable:
		return &c.AccountsPayable
	case entity.TypeAccountsReceivable:
		return &c.AccountsReceivable
	case entity.TypeTransactions:
		return &c.Transactions
	default:
		return nil
	}
}

// Data holds the raw records of every entity type. Records are opaque JSON
// objects and are kept byte for byte as read or listed.
type Data struct {
	Profiles           []json.RawMessage `json:"profiles"`
	Categories         []json.RawMessage `json:"categories"`
	Suppliers          []json.RawMessage `json:"suppliers"`
	Banks              []json.RawMessage `json:"banks"`
	BankAccounts       []json.RawMessage `json:"bank_accounts"`
	AccountsPayable    []json.RawMessage `json:"accounts_payable"`
	AccountsReceivable []json.RawMessage `json:"accounts_receivable"`
	Transactions       []json.RawMessage `json:"transactions"`
}

// Records returns the records of t. It implements entity.RecordSource.
func (d Data) Records(t entity.Type) []json.RawMessage {
	if p := d.field(t); p != nil {
		return *p
	}
	return nil
}

// Set stores the records of t. A nil slice is stored as empty so the type
// always serializes as an array.
func (d *Data) Set(t entity.Type, records []json.RawMessage) {
	if records == nil {
		records = []json.RawMessage{}
	}
	if p := d.field(t); p != nil {
		*p = records
	}
}

// Counts computes the record count of every entity type.
func (d Data) Counts() Counts {
	var c Counts
	for _, t := range entity.AllTypes() {
		c.Set(t, len(d.Records(t)))
	}
	return c
}

func (d *Data) field(t entity.Type) *[]json.RawMessage {
	switch t {
	case entity.TypeProfiles:
		return &d.Profiles
	case entity.TypeCategories:
		return &d.Categories
	case entity.TypeSuppliers:
		return &d.Suppliers
	case entity.TypeBanks:
		return &d.Banks
	case entity.TypeBankAccounts:
		return &d.BankAccounts
	case entity.TypeAccountsPayable:
		return &d.AccountsPayable
	case entity.TypeAccountsReceivable:
		return &d.AccountsReceivable
	case entity.TypeTransactions:
		return &d.Transactions
	default:
		return nil
	}
}

// Metadata is the header of a backup file, everything except the records.
type Metadata struct {
	App           App          `json:"app"`
	SchemaVersion string       `json:"schema_version"`
	ExportedAt    time.Time    `json:"exported_at"`
	Owner         Owner        `json:"owner"`
	Counts        Counts       `json:"counts"`
	Checksum      ChecksumInfo `json:"checksum"`
	Meta          Meta         `json:"meta"`
}

// Metadata returns the header fields of f.
func (f *File) Metadata() *Metadata {
	return &Metadata{
		App:           f.App,
		SchemaVersion: f.SchemaVersion,
		ExportedAt:    f.ExportedAt,
		Owner:         f.Owner,
		Counts:        f.Counts,
		Checksum:      f.Checksum,
		Meta:          f.Meta,
	}
}

// Marshal serializes f as indented JSON.
func (f *File) Marshal() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}
