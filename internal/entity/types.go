// Package entity defines the entity types of a bookkeeping dataset and
// typed views over their records.
//
// Records travel through a backup as opaque JSON objects. The typed views
// decode only the fields needed to reason about relations between records;
// the original bytes remain authoritative.
package entity

// Type identifies one of the entity collections of a dataset.
// The value is the JSON key used for the collection in a backup file.
type Type string

// Entity collection types.
const (
	TypeProfiles           Type = "profiles"
	TypeCategories         Type = "categories"
	TypeSuppliers          Type = "suppliers"
	TypeBanks              Type = "banks"
	TypeBankAccounts       Type = "bank_accounts"
	TypeAccountsPayable    Type = "accounts_payable"
	TypeAccountsReceivable Type = "accounts_receivable"
	TypeTransactions       Type = "transactions"
)

// AllTypes returns every entity type in backup file order.
func AllTypes() []Type {
	return []Type{
		TypeProfiles,
		TypeCategories,
		TypeSuppliers,
		TypeBanks,
		TypeBankAccounts,
		TypeAccountsPayable,
		TypeAccountsReceivable,
		TypeTransactions,
	}
}

// ParseType returns the Type for a JSON key.
func ParseType(s string) (Type, bool) {
	for _, t := range AllTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// String returns the JSON key of the type.
func (t Type) String() string {
	return string(t)
}
