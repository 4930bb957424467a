package entity

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Records are opaque: the typed views below only read identifiers,
// references, the transaction type and amounts. Every other field is left
// to the raw bytes, whatever its JSON type.

// TransactionKind is the kind of money movement a transaction records.
type TransactionKind string

// Transaction kinds.
const (
	KindIncome   TransactionKind = "income"
	KindExpense  TransactionKind = "expense"
	KindTransfer TransactionKind = "transfer"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	default:
		return false
	}
}

// UnmarshalJSON accepts any JSON value. A value that is not a string keeps
// its JSON text and is never a known kind.
func (k *TransactionKind) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = TransactionKind(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*k = ""
		return nil
	}
	*k = TransactionKind(b)
	return nil
}

// Money is an optional amount. Values that do not parse as a decimal are
// kept as text instead of failing the record.
type Money struct {
	decimal.NullDecimal

	// Text is the raw JSON of an amount that did not parse.
	Text string
}

// UnmarshalJSON accepts a JSON number, a numeric string, null, or anything
// else as unparsed text.
func (m *Money) UnmarshalJSON(b []byte) error {
	*m = Money{}
	if err := m.NullDecimal.UnmarshalJSON(b); err != nil {
		m.NullDecimal = decimal.NullDecimal{}
		m.Text = string(bytes.TrimSpace(b))
	}
	return nil
}

// Unparsed reports whether the amount is present but not a decimal.
func (m Money) Unparsed() bool {
	return m.Text != ""
}

// Profile is the account owner's profile.
type Profile struct {
	ID ProfileID `json:"id"`
}

// Category groups payables, receivables and transactions.
type Category struct {
	ID CategoryID `json:"id"`
}

// Supplier is a counterparty of accounts payable.
type Supplier struct {
	ID SupplierID `json:"id"`
}

// Bank is a financial institution.
type Bank struct {
	ID BankID `json:"id"`
}

// BankAccount is an account held at a bank.
type BankAccount struct {
	ID      BankAccountID `json:"id"`
	BankID  *BankID       `json:"bank_id"`
	Balance Money         `json:"balance"`
}

// AccountPayable is a bill owed by the user.
type AccountPayable struct {
	ID            PayableID      `json:"id"`
	Amount        Money          `json:"amount"`
	CategoryID    *CategoryID    `json:"category_id"`
	SupplierID    *SupplierID    `json:"supplier_id"`
	BankAccountID *BankAccountID `json:"bank_account_id"`
}

// AccountReceivable is an amount owed to the user.
type AccountReceivable struct {
	ID            ReceivableID   `json:"id"`
	Amount        Money          `json:"amount"`
	CategoryID    *CategoryID    `json:"category_id"`
	BankAccountID *BankAccountID `json:"bank_account_id"`
}

// Transaction is a settled money movement.
type Transaction struct {
	ID                   TransactionID   `json:"id"`
	Kind                 TransactionKind `json:"type"`
	Amount               Money           `json:"amount"`
	CategoryID           *CategoryID     `json:"category_id"`
	FromAccountID        *BankAccountID  `json:"from_account_id"`
	ToAccountID          *BankAccountID  `json:"to_account_id"`
	AccountsPayableID    *PayableID      `json:"accounts_payable_id"`
	AccountsReceivableID *ReceivableID   `json:"accounts_receivable_id"`
}
