package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxOpeningBalance TransactionType = "OPENING_BALANCE"
	TxAdjustment     TransactionType = "ADJUSTMENT"
	TxTransferOut    TransactionType = "TRANSFER_OUT"
	TxTransferIn     TransactionType = "TRANSFER_IN"
	TxUnlinked       TransactionType = "UNLINKED"
)

const (
	DirectionAdd    = "add"
	DirectionReduce = "reduce"
)

// LedgerTransaction is one immutable entry of the cash and bank ledger.
// Amount is signed: positive entries increase the account balance.
// AccountID is nil for unlinked entries.
type LedgerTransaction struct {
	ID               int64               `json:"id" db:"id"`
	BusinessID       string              `json:"-" db:"business_id"`
	AccountID        *int64              `json:"account_id" db:"account_id"`
	AccountName      string              `json:"account_name,omitempty"`
	AccountKind      AccountKind         `json:"account_type,omitempty"`
	Type             TransactionType     `json:"type" db:"type"`
	Direction        string              `json:"direction" db:"direction"`
	Amount           decimal.Decimal     `json:"amount" db:"amount"`
	BalanceAfter     decimal.NullDecimal `json:"balance_after" db:"balance_after"`
	Date             Date                `json:"date" db:"txn_date"`
	Remarks          string              `json:"remarks,omitempty" db:"remarks"`
	TransferID       string              `json:"transfer_id,omitempty" db:"transfer_id"`
	CounterAccountID *int64              `json:"counter_account_id,omitempty" db:"counter_account_id"`
	IdempotencyKey   string              `json:"-" db:"idempotency_key"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
}

// Paid is the outflow magnitude of the entry, zero for inflows.
func (t *LedgerTransaction) Paid() decimal.Decimal {
	if t.Amount.IsNegative() {
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// Received is the inflow magnitude of the entry, zero for outflows.
func (t *LedgerTransaction) Received() decimal.Decimal {
	if t.Amount.IsPositive() {
		return t.Amount
	}
	return decimal.Zero
}

// Mode is the display label for where the money sat.
func (t *LedgerTransaction) Mode() string {
	switch t.AccountKind {
	case AccountKindCash:
		return "Cash"
	case AccountKindBank:
		return "Bank"
	}
	return "Unlinked"
}

// TransactionFilter narrows a ledger listing. Zero values mean no filter.
type TransactionFilter struct {
	Start     *Date
	End       *Date
	AccountID *int64
	Limit     int
}
