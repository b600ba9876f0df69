// Package ledger holds the balance arithmetic shared by adjustments and
// transfers. It performs no I/O.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bizledger/cashbank/internal/models"
)

// MaxScale is the number of fractional digits a currency amount may carry.
const MaxScale = 2

// MaxAmount is the largest single amount accepted. Balances are stored as
// NUMERIC(18,2), so a balance must stay below 10^16.
var MaxAmount = decimal.New(1, 13)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrTooPrecise        = fmt.Errorf("amount must have at most %d decimal places", MaxScale)
	ErrAmountTooLarge    = fmt.Errorf("amount must not exceed %s", MaxAmount.StringFixed(MaxScale))
)

// InsufficientBalanceError is returned when a debit would take an account
// below zero and negative balances are not permitted.
type InsufficientBalanceError struct {
	AccountID int64
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in account %d: balance %s, requested %s",
		e.AccountID, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

// Policy decides which balance transitions are allowed.
type Policy struct {
	AllowNegativeBalance bool
}

// CheckAmount validates a user supplied movement amount.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	if amount.Exponent() < -MaxScale && !amount.Equal(amount.Round(MaxScale)) {
		return ErrTooPrecise
	}
	return nil
}

// Signed returns amount with the sign direction applies to a balance.
func Signed(direction string, amount decimal.Decimal) decimal.Decimal {
	if direction == models.DirectionReduce {
		return amount.Neg()
	}
	return amount
}

// Apply returns the balance that results from adding delta to balance.
func (p Policy) Apply(accountID int64, balance, delta decimal.Decimal) (decimal.Decimal, error) {
	next := balance.Add(delta)
	if delta.IsNegative() && next.IsNegative() && !p.AllowNegativeBalance {
		return balance, &InsufficientBalanceError{AccountID: accountID, Balance: balance, Amount: delta.Neg()}
	}
	return next, nil
}

// Leg is one side of a balance movement.
type Leg struct {
	AccountID int64
	Before    decimal.Decimal
	Delta     decimal.Decimal
	After     decimal.Decimal
}

// TransferPlan is the pair of legs a transfer applies. The sum of the two
// deltas is always zero.
type TransferPlan struct {
	Out Leg
	In  Leg
}

// PlanTransfer computes both legs of moving amount from one account to
// another without touching storage.
func (p Policy) PlanTransfer(from, to *models.Account, amount decimal.Decimal) (TransferPlan, error) {
	if err := CheckAmount(amount); err != nil {
		return TransferPlan{}, err
	}
	if from.ID == to.ID {
		return TransferPlan{}, errors.New("transfer source and destination must differ")
	}

	outAfter, err := p.Apply(from.ID, from.Balance, amount.Neg())
	if err != nil {
		return TransferPlan{}, err
	}

	return TransferPlan{
		Out: Leg{AccountID: from.ID, Before: from.Balance, Delta: amount.Neg(), After: outAfter},
		In:  Leg{AccountID: to.ID, Before: to.Balance, Delta: amount, After: to.Balance.Add(amount)},
	}, nil
}

// Replay sums the signed amounts of entries in order and reports the first
// entry whose recorded running balance disagrees with the replayed one.
func Replay(entries []models.LedgerTransaction) (decimal.Decimal, *int64) {
	sum := decimal.Zero
	var mismatch *int64
	for i := range entries {
		sum = sum.Add(entries[i].Amount)
		if mismatch == nil && entries[i].BalanceAfter.Valid && !entries[i].BalanceAfter.Decimal.Equal(sum) {
			id := entries[i].ID
			mismatch = &id
		}
	}
	return sum, mismatch
}
