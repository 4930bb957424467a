package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidID indicates a record identifier is neither a string nor a number.
var ErrInvalidID = errors.New("identifier must be a string or a number")

// ID identifies a record of entity T. The type parameter only tags the
// identifier, so a BankID cannot be passed where a CategoryID is expected.
//
// Identifiers are stored as text. In JSON both strings ("c0ffee...") and
// numbers (999) are accepted; numbers keep their literal form.
type ID[T any] string

// Identifier aliases, one per entity.
type (
	ProfileID     = ID[Profile]
	CategoryID    = ID[Category]
	SupplierID    = ID[Supplier]
	BankID        = ID[Bank]
	BankAccountID = ID[BankAccount]
	PayableID     = ID[AccountPayable]
	ReceivableID  = ID[AccountReceivable]
	TransactionID = ID[Transaction]
)

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID[T](s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidID, b)
		}
		*id = ID[T](n.String())
		return nil
	}
}

// String returns the identifier text.
func (id ID[T]) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID[T]) IsZero() bool {
	return id == ""
}

// Present reports whether an optional reference is set to a non-empty id.
func Present[T any](ref *ID[T]) bool {
	return ref != nil && !ref.IsZero()
}

// IDSet is a set of identifiers of one entity.
type IDSet[T any] map[ID[T]]struct{}

// Add inserts id and reports whether it was already present.
func (s IDSet[T]) Add(id ID[T]) (duplicate bool) {
	if _, ok := s[id]; ok {
		return true
	}
	s[id] = struct{}{}
	return false
}

// Has reports whether id is in the set.
func (s IDSet[T]) Has(id ID[T]) bool {
	_, ok := s[id]
	return ok
}
