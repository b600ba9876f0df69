package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bizledger/cashbank/internal/audit"
	"github.com/bizledger/cashbank/internal/ledger"
	"github.com/bizledger/cashbank/internal/logging"
	"github.com/bizledger/cashbank/internal/models"
)

// LedgerService records balance adjustments and transfers and serves the
// transaction history. Every mutation runs in one database transaction with
// the affected account rows locked.
type LedgerService struct {
	db        *sql.DB
	policy    ledger.Policy
	guard     IdempotencyGuard
	validator *ValidationHelper
	audit     *audit.Logger
	now       func() time.Time
}

func NewLedgerService(db *sql.DB, policy ledger.Policy, guard IdempotencyGuard, validator *ValidationHelper, auditLogger *audit.Logger) *LedgerService {
	return &LedgerService{
		db:        db,
		policy:    policy,
		guard:     guard,
		validator: validator,
		audit:     auditLogger,
		now:       time.Now,
	}
}

// Adjust adds to or reduces one account's balance and appends the matching
// ledger entry. A non-empty idempotencyKey makes retries return the entry
// recorded by the first attempt.
func (s *LedgerService) Adjust(ctx context.Context, businessID string, req models.AdjustmentRequest, idempotencyKey string) (*models.AdjustmentResult, error) {
	if err := s.validator.ValidateAdjustment(&req); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		previous, err := transactionsByIdempotencyKey(ctx, s.db, businessID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if len(previous) > 0 {
			if len(previous) != 1 || previous[0].Type != models.TxAdjustment {
				return nil, fmt.Errorf("idempotency key %q was used for a different request: %w", idempotencyKey, ErrDuplicateSubmission)
			}
			return &models.AdjustmentResult{Success: true, Replayed: true, Transaction: previous[0]}, nil
		}

		release, err := s.claim(ctx, businessID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	log := logging.FromContext(ctx).WithField("component", "ledger")
	entry := models.LedgerTransaction{
		BusinessID:     businessID,
		Type:           models.TxAdjustment,
		Direction:      req.Type,
		Amount:         ledger.Signed(req.Type, req.Amount.Decimal),
		Date:           req.Date,
		Remarks:        req.Remarks,
		IdempotencyKey: idempotencyKey,
	}

	var accountID int64
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		account, err := s.lockEndpoint(ctx, tx, businessID, req.MoneyType == models.MoneyTypeCash, req.AccountID, "account_id")
		if err != nil {
			return err
		}
		accountID = account.ID

		newBalance, err := s.policy.Apply(account.ID, account.Balance, entry.Amount)
		if err != nil {
			return err
		}

		if err := updateAccountBalance(ctx, tx, account, newBalance, s.now()); err != nil {
			return err
		}

		entry.AccountID = &account.ID
		entry.AccountName = account.Name
		entry.AccountKind = account.Kind
		entry.BalanceAfter = decimal.NewNullDecimal(newBalance)
		return insertTransaction(ctx, tx, &entry)
	})
	if err != nil {
		s.audit.LogError(businessID, "adjustment", accountID, err)
		log.WithError(err).Warn("Adjustment failed")
		return nil, err
	}

	s.audit.LogAdjustment(businessID, entry.ID, accountID, entry.Amount, "SUCCESS")
	log.WithFields(logrus.Fields{"account_id": accountID, "amount": entry.Amount.String()}).Info("Adjustment recorded")
	return &models.AdjustmentResult{Success: true, Transaction: entry}, nil
}

// Transfer debits the source account and credits the destination in a
// single database transaction. Both legs share a transfer id.
func (s *LedgerService) Transfer(ctx context.Context, businessID string, req models.TransferRequest, idempotencyKey string) (*models.TransferResult, error) {
	if err := s.validator.ValidateTransfer(&req); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		previous, err := transactionsByIdempotencyKey(ctx, s.db, businessID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if len(previous) > 0 {
			if len(previous) != 2 || previous[0].TransferID == "" {
				return nil, fmt.Errorf("idempotency key %q was used for a different request: %w", idempotencyKey, ErrDuplicateSubmission)
			}
			return &models.TransferResult{Success: true, Replayed: true, TransferID: previous[0].TransferID, Transactions: previous}, nil
		}

		release, err := s.claim(ctx, businessID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	log := logging.FromContext(ctx).WithField("component", "ledger")
	transferID := uuid.NewString()
	amount := req.Amount.Decimal

	var out, in models.LedgerTransaction
	var fromID, toID int64
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		fromID, err = s.resolveEndpoint(ctx, tx, businessID, req.From == models.EndpointCash, req.FromAccountID)
		if err != nil {
			return err
		}
		toID, err = s.resolveEndpoint(ctx, tx, businessID, req.To == models.EndpointCash, req.ToAccountID)
		if err != nil {
			return err
		}
		if fromID == toID {
			ve := newValidationError()
			ve.Add("to", ErrSameAccount.Error())
			ve.Err = ErrSameAccount
			return ve
		}

		// Lock accounts in consistent order to prevent deadlocks
		firstID, secondID := fromID, toID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}
		lock := func(id int64) (*models.Account, error) {
			account, err := lockAccount(ctx, tx, businessID, id)
			if errors.Is(err, ErrAccountNotFound) {
				field := "to_account_id"
				if id == fromID {
					field = "from_account_id"
				}
				return nil, FieldError(field, "does not reference an existing bank account")
			}
			return account, err
		}
		first, err := lock(firstID)
		if err != nil {
			return err
		}
		second, err := lock(secondID)
		if err != nil {
			return err
		}

		from, to := first, second
		if firstID != fromID {
			from, to = second, first
		}
		if err := checkEndpointKind(from, req.From == models.EndpointCash, "from_account_id"); err != nil {
			return err
		}
		if err := checkEndpointKind(to, req.To == models.EndpointCash, "to_account_id"); err != nil {
			return err
		}

		plan, err := s.policy.PlanTransfer(from, to, amount)
		if err != nil {
			return err
		}

		now := s.now()
		if err := updateAccountBalance(ctx, tx, from, plan.Out.After, now); err != nil {
			return err
		}
		if err := updateAccountBalance(ctx, tx, to, plan.In.After, now); err != nil {
			return err
		}

		out = transferLeg(businessID, transferID, idempotencyKey, req, from, to.ID, plan.Out, models.TxTransferOut)
		if err := insertTransaction(ctx, tx, &out); err != nil {
			return err
		}
		in = transferLeg(businessID, transferID, idempotencyKey, req, to, from.ID, plan.In, models.TxTransferIn)
		return insertTransaction(ctx, tx, &in)
	})
	if err != nil {
		s.audit.LogError(businessID, "transfer", fromID, err)
		log.WithError(err).Warn("Transfer failed")
		return nil, err
	}

	s.audit.LogTransfer(businessID, transferID, fromID, toID, amount, "SUCCESS")
	log.WithField("transfer_id", transferID).Info("Transfer recorded")
	return &models.TransferResult{
		Success:      true,
		TransferID:   transferID,
		Transactions: []models.LedgerTransaction{out, in},
	}, nil
}

// ListTransactions returns ledger entries newest first. Without a bounded
// date window in filter every entry is returned.
func (s *LedgerService) ListTransactions(ctx context.Context, businessID string, filter models.TransactionFilter) ([]models.LedgerTransaction, error) {
	query, args := buildTransactionQuery(businessID, filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (s *LedgerService) claim(ctx context.Context, businessID, key string) (func(), error) {
	ok, err := s.guard.Acquire(ctx, businessID, key)
	if err != nil {
		// the database unique index still rejects duplicates
		logging.FromContext(ctx).WithError(err).Warn("Idempotency guard unavailable")
		return func() {}, nil
	}
	if !ok {
		return nil, ErrDuplicateSubmission
	}
	return func() { s.guard.Release(context.WithoutCancel(ctx), businessID, key) }, nil
}

// resolveEndpoint returns the id of the cash account or of the given bank
// account.
func (s *LedgerService) resolveEndpoint(ctx context.Context, tx *sql.Tx, businessID string, cash bool, bankAccountID *int64) (int64, error) {
	if cash {
		return ensureCashAccount(ctx, tx, businessID)
	}
	return *bankAccountID, nil
}

func (s *LedgerService) lockEndpoint(ctx context.Context, tx *sql.Tx, businessID string, cash bool, bankAccountID *int64, field string) (*models.Account, error) {
	id, err := s.resolveEndpoint(ctx, tx, businessID, cash, bankAccountID)
	if err != nil {
		return nil, err
	}
	account, err := lockAccount(ctx, tx, businessID, id)
	if errors.Is(err, ErrAccountNotFound) && !cash {
		return nil, FieldError(field, "does not reference an existing bank account")
	}
	if err != nil {
		return nil, err
	}
	if err := checkEndpointKind(account, cash, field); err != nil {
		return nil, err
	}
	return account, nil
}

func checkEndpointKind(account *models.Account, cash bool, field string) error {
	if cash && !account.IsCash() {
		return fmt.Errorf("account %d is not the cash account", account.ID)
	}
	if !cash && !account.IsBank() {
		return FieldError(field, "does not reference an existing bank account")
	}
	return nil
}

func transferLeg(businessID, transferID, key string, req models.TransferRequest, account *models.Account, counterID int64, leg ledger.Leg, txType models.TransactionType) models.LedgerTransaction {
	direction := models.DirectionAdd
	if leg.Delta.IsNegative() {
		direction = models.DirectionReduce
	}
	accountID := account.ID
	return models.LedgerTransaction{
		BusinessID:       businessID,
		AccountID:        &accountID,
		AccountName:      account.Name,
		AccountKind:      account.Kind,
		Type:             txType,
		Direction:        direction,
		Amount:           leg.Delta,
		BalanceAfter:     decimal.NewNullDecimal(leg.After),
		Date:             req.Date,
		Remarks:          req.Remarks,
		TransferID:       transferID,
		CounterAccountID: &counterID,
		IdempotencyKey:   key,
	}
}
