package backup

import (
	"fmt"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

// locator names one record in issue messages.
type locator struct {
	typ   entity.Type
	index int
	id    string
}

func (l locator) String() string {
	if l.id == "" {
		return fmt.Sprintf("%s[%d]", l.typ, l.index)
	}
	return fmt.Sprintf("%s[%d] (id %s)", l.typ, l.index, l.id)
}

func (l locator) details(field string, value string) map[string]any {
	d := map[string]any{
		"entity_type": l.typ,
		"index":       l.index,
		"field":       field,
	}
	if l.id != "" {
		d["id"] = l.id
	}
	if value != "" {
		d["value"] = value
	}
	return d
}

type integrityChecker struct {
	issues []Issue
}

func (c *integrityChecker) report(level Level, at locator, field, value, format string, args ...any) {
	c.issues = append(c.issues, newIssue(level, IssueIntegrity, at.details(field, value),
		"%s: %s", at, fmt.Sprintf(format, args...)))
}

// CheckIntegrity checks that every reference inside ds resolves to a record
// of ds. It walks every record and returns all findings at once.
//
// Unresolved bank account banks and malformed transactions are errors.
// Unresolved optional references are warnings.
func CheckIntegrity(ds *entity.Dataset) []Issue {
	c := &integrityChecker{issues: []Issue{}}
	if ds == nil {
		return c.issues
	}

	categories := collectIDs(c, entity.TypeCategories, ds.Categories, func(r entity.Category) entity.CategoryID { return r.ID })
	suppliers := collectIDs(c, entity.TypeSuppliers, ds.Suppliers, func(r entity.Supplier) entity.SupplierID { return r.ID })
	banks := collectIDs(c, entity.TypeBanks, ds.Banks, func(r entity.Bank) entity.BankID { return r.ID })
	accounts := collectIDs(c, entity.TypeBankAccounts, ds.BankAccounts, func(r entity.BankAccount) entity.BankAccountID { return r.ID })
	payables := collectIDs(c, entity.TypeAccountsPayable, ds.AccountsPayable, func(r entity.AccountPayable) entity.PayableID { return r.ID })
	receivables := collectIDs(c, entity.TypeAccountsReceivable, ds.AccountsReceivable, func(r entity.AccountReceivable) entity.ReceivableID { return r.ID })
	collectIDs(c, entity.TypeTransactions, ds.Transactions, func(r entity.Transaction) entity.TransactionID { return r.ID })

	for i, acct := range ds.BankAccounts {
		at := locator{entity.TypeBankAccounts, i, acct.ID.String()}
		c.checkAmount(at, "balance", acct.Balance)
		if !entity.Present(acct.BankID) {
			c.report(LevelError, at, "bank_id", "", "bank_id is missing")
			continue
		}
		checkRef(c, LevelError, at, "bank_id", acct.BankID, banks, entity.TypeBanks)
	}

	for i, p := range ds.AccountsPayable {
		at := locator{entity.TypeAccountsPayable, i, p.ID.String()}
		c.checkAmount(at, "amount", p.Amount)
		checkRef(c, LevelWarning, at, "category_id", p.CategoryID, categories, entity.TypeCategories)
		checkRef(c, LevelWarning, at, "supplier_id", p.SupplierID, suppliers, entity.TypeSuppliers)
		checkRef(c, LevelWarning, at, "bank_account_id", p.BankAccountID, accounts, entity.TypeBankAccounts)
	}

	for i, r := range ds.AccountsReceivable {
		at := locator{entity.TypeAccountsReceivable, i, r.ID.String()}
		c.checkAmount(at, "amount", r.Amount)
		checkRef(c, LevelWarning, at, "category_id", r.CategoryID, categories, entity.TypeCategories)
		checkRef(c, LevelWarning, at, "bank_account_id", r.BankAccountID, accounts, entity.TypeBankAccounts)
	}

	for i := range ds.Transactions {
		tx := &ds.Transactions[i]
		at := locator{entity.TypeTransactions, i, tx.ID.String()}
		c.checkAmount(at, "amount", tx.Amount)
		c.checkTransactionShape(at, tx)
		checkRef(c, LevelWarning, at, "from_account_id", tx.FromAccountID, accounts, entity.TypeBankAccounts)
		checkRef(c, LevelWarning, at, "to_account_id", tx.ToAccountID, accounts, entity.TypeBankAccounts)
		checkRef(c, LevelWarning, at, "accounts_payable_id", tx.AccountsPayableID, payables, entity.TypeAccountsPayable)
		checkRef(c, LevelWarning, at, "accounts_receivable_id", tx.AccountsReceivableID, receivables, entity.TypeAccountsReceivable)
		checkRef(c, LevelWarning, at, "category_id", tx.CategoryID, categories, entity.TypeCategories)
	}

	return c.issues
}

// checkAmount warns about an amount that is set but is not a number. The
// record is still restored as is.
func (c *integrityChecker) checkAmount(at locator, field string, m entity.Money) {
	if m.Unparsed() {
		c.report(LevelWarning, at, field, m.Text, "%s %s is not a number", field, m.Text)
	}
}

// checkTransactionShape enforces the account endpoints each kind requires.
func (c *integrityChecker) checkTransactionShape(at locator, tx *entity.Transaction) {
	from, to := entity.Present(tx.FromAccountID), entity.Present(tx.ToAccountID)

	switch tx.Kind {
	case entity.KindIncome:
		if !to {
			c.report(LevelError, at, "to_account_id", "", "income transaction requires to_account_id")
		}
	case entity.KindExpense:
		if !from {
			c.report(LevelError, at, "from_account_id", "", "expense transaction requires from_account_id")
		}
	case entity.KindTransfer:
		switch {
		case !from || !to:
			c.report(LevelError, at, "from_account_id", "",
				"transfer transaction requires both from_account_id and to_account_id")
		case *tx.FromAccountID == *tx.ToAccountID:
			c.report(LevelError, at, "to_account_id", tx.ToAccountID.String(),
				"transfer transaction moves money from account %s to itself", tx.ToAccountID)
		}
	default:
		c.report(LevelWarning, at, "type", string(tx.Kind), "unknown transaction type %q", tx.Kind)
	}
}

// collectIDs builds the id set of one entity type, warning about duplicates.
// Records without an id cannot be referenced and are left out.
func collectIDs[R, T any](c *integrityChecker, typ entity.Type, records []R, idOf func(R) entity.ID[T]) entity.IDSet[T] {
	set := make(entity.IDSet[T], len(records))
	for i, rec := range records {
		id := idOf(rec)
		if id.IsZero() {
			continue
		}
		if set.Add(id) {
			c.report(LevelWarning, locator{typ, i, id.String()}, "id", id.String(), "duplicate id %s", id)
		}
	}
	return set
}

// checkRef reports ref when it is set but absent from set.
func checkRef[T any](c *integrityChecker, level Level, at locator, field string, ref *entity.ID[T], set entity.IDSet[T], target entity.Type) {
	if !entity.Present(ref) || set.Has(*ref) {
		return
	}
	c.report(level, at, field, ref.String(), "%s %s not found in %s", field, ref, target)
}
