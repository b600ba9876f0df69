package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountKindCash AccountKind = "CASH"
	AccountKindBank AccountKind = "BANK"
)

// BankDetails is the optional banking information attached to a bank account.
type BankDetails struct {
	AccountNumber     string `json:"bank_account_number"`
	IFSCCode          string `json:"ifsc_code"`
	BranchName        string `json:"bank_branch_name"`
	AccountHolderName string `json:"account_holder_name"`
	UPIID             string `json:"upi_id,omitempty"`
}

// Account is either the business's single cash account or one of its bank
// accounts. Balance is only changed inside a ledger transaction.
type Account struct {
	ID             int64           `json:"id" db:"id"`
	BusinessID     string          `json:"-" db:"business_id"`
	Name           string          `json:"account_name" db:"name"`
	Kind           AccountKind     `json:"account_type" db:"kind"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance" db:"opening_balance"`
	AsOfDate       Date            `json:"as_of_date" db:"as_of_date"`
	BankDetails    *BankDetails    `json:"bank_details,omitempty"`
	IsMain         bool            `json:"is_main,omitempty"`
	Version        int             `json:"-" db:"version"` // for optimistic locking
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (a *Account) IsCash() bool { return a.Kind == AccountKindCash }

func (a *Account) IsBank() bool { return a.Kind == AccountKindBank }

// AccountList is the registry view of a business: its cash account and its
// bank accounts in creation order.
type AccountList struct {
	Cash         Account   `json:"cash"`
	BankAccounts []Account `json:"bank_accounts"`
}

// Total is the sum of cash and every bank balance.
func (l *AccountList) Total() decimal.Decimal {
	total := l.Cash.Balance
	for _, a := range l.BankAccounts {
		total = total.Add(a.Balance)
	}
	return total
}

// IntegrityReport compares an account's stored balance with the balance
// rebuilt from its ledger.
type IntegrityReport struct {
	AccountID       int64           `json:"account_id"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	LedgerBalance   decimal.Decimal `json:"ledger_balance"`
	EntryCount      int             `json:"entry_count"`
	Consistent      bool            `json:"consistent"`
	FirstMismatchID *int64          `json:"first_mismatch_id,omitempty"`
}
