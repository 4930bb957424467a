package entity

import (
	"encoding/json"
	"fmt"
)

// RecordSource exposes the raw records of each entity type.
type RecordSource interface {
	Records(t Type) []json.RawMessage
}

// Dataset holds the typed views of every record of a backup.
type Dataset struct {
	Profiles           []Profile
	Categories         []Category
	Suppliers          []Supplier
	Banks              []Bank
	BankAccounts       []BankAccount
	AccountsPayable    []AccountPayable
	AccountsReceivable []AccountReceivable
	Transactions       []Transaction
}

// DecodeError reports a record that could not be decoded into its typed view.
type DecodeError struct {
	Type  Type
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Type, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode builds a Dataset from raw records. Every record is attempted;
// failures are returned together and the failing records are skipped.
func Decode(src RecordSource) (*Dataset, []*DecodeError) {
	var errs []*DecodeError
	ds := &Dataset{
		Profiles:           decodeAll[Profile](src, TypeProfiles, &errs),
		Categories:         decodeAll[Category](src, TypeCategories, &errs),
		Suppliers:          decodeAll[Supplier](src, TypeSuppliers, &errs),
		Banks:              decodeAll[Bank](src, TypeBanks, &errs),
		BankAccounts:       decodeAll[BankAccount](src, TypeBankAccounts, &errs),
		AccountsPayable:    decodeAll[AccountPayable](src, TypeAccountsPayable, &errs),
		AccountsReceivable: decodeAll[AccountReceivable](src, TypeAccountsReceivable, &errs),
		Transactions:       decodeAll[Transaction](src, TypeTransactions, &errs),
	}
	return ds, errs
}

func decodeAll[T any](src RecordSource, t Type, errs *[]*DecodeError) []T {
	raw := src.Records(t)
	out := make([]T, 0, len(raw))
	for i, rec := range raw {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			*errs = append(*errs, &DecodeError{Type: t, Index: i, Err: err})
			continue
		}
		out = append(out, v)
	}
	return out
}
