package models

import "github.com/shopspring/decimal"

// DateRange is the resolved period a listing covers. Unbounded ranges have
// nil dates.
type DateRange struct {
	Name  string `json:"name"`
	Start *Date  `json:"start"`
	End   *Date  `json:"end"`
}

// Bounded reports whether both ends of the range are known. Unbounded
// ranges apply no date filtering at all.
func (r DateRange) Bounded() bool { return r.Start != nil && r.End != nil }

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d Date) bool {
	if !r.Bounded() {
		return true
	}
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// TransactionRow is a ledger entry shaped for the dashboard table.
type TransactionRow struct {
	ID         int64            `json:"id"`
	Date       Date             `json:"date"`
	Type       TransactionType  `json:"type"`
	AccountID  *int64           `json:"account_id"`
	Name       string           `json:"name"`
	Mode       string           `json:"mode"`
	Remarks    string           `json:"remarks,omitempty"`
	Paid       decimal.Decimal  `json:"paid"`
	Received   decimal.Decimal  `json:"received"`
	Balance    *decimal.Decimal `json:"balance"`
	TransferID string           `json:"transfer_id,omitempty"`
}

// Totals sums the paid and received columns of the listed rows.
type Totals struct {
	Paid     decimal.Decimal `json:"paid"`
	Received decimal.Decimal `json:"received"`
	Balance  decimal.Decimal `json:"balance"`
}

// DashboardSummary is the reconciliation view of a business's money.
type DashboardSummary struct {
	Range                DateRange        `json:"range"`
	TotalBalance         decimal.Decimal  `json:"total_balance"`
	Cash                 Account          `json:"cash"`
	BankAccounts         []Account        `json:"bank_accounts"`
	UnlinkedTransactions decimal.Decimal  `json:"unlinked_transactions"`
	Transactions         []TransactionRow `json:"transactions"`
	Totals               Totals           `json:"totals"`
}

// NewTransactionRow shapes a ledger entry for display.
func NewTransactionRow(t LedgerTransaction) TransactionRow {
	row := TransactionRow{
		ID:         t.ID,
		Date:       t.Date,
		Type:       t.Type,
		AccountID:  t.AccountID,
		Name:       t.AccountName,
		Mode:       t.Mode(),
		Remarks:    t.Remarks,
		Paid:       t.Paid(),
		Received:   t.Received(),
		TransferID: t.TransferID,
	}
	if row.Name == "" {
		row.Name = "Unlinked"
	}
	if t.BalanceAfter.Valid {
		b := t.BalanceAfter.Decimal
		row.Balance = &b
	}
	return row
}
