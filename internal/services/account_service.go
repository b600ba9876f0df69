package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bizledger/cashbank/internal/audit"
	"github.com/bizledger/cashbank/internal/ledger"
	"github.com/bizledger/cashbank/internal/logging"
	"github.com/bizledger/cashbank/internal/models"
)

const openingBalanceRemarks = "Opening balance"

// AccountService is the registry of a business's cash and bank accounts.
type AccountService struct {
	db        *sql.DB
	validator *ValidationHelper
	audit     *audit.Logger
}

func NewAccountService(db *sql.DB, validator *ValidationHelper, auditLogger *audit.Logger) *AccountService {
	return &AccountService{db: db, validator: validator, audit: auditLogger}
}

// ListAccounts returns the cash account and all bank accounts. The cash
// account is created on first access. The oldest bank account is flagged as
// the main one.
func (s *AccountService) ListAccounts(ctx context.Context, businessID string) (*models.AccountList, error) {
	if _, err := ensureCashAccount(ctx, s.db, businessID); err != nil {
		return nil, err
	}

	accounts, err := listAccounts(ctx, s.db, businessID)
	if err != nil {
		return nil, err
	}

	list := &models.AccountList{BankAccounts: []models.Account{}}
	foundCash := false
	for _, a := range accounts {
		if a.IsCash() {
			list.Cash = a
			foundCash = true
			continue
		}
		if len(list.BankAccounts) == 0 {
			a.IsMain = true
		}
		list.BankAccounts = append(list.BankAccounts, a)
	}
	if !foundCash {
		return nil, fmt.Errorf("cash account missing for business %s", businessID)
	}
	return list, nil
}

func (s *AccountService) GetAccount(ctx context.Context, businessID string, accountID int64) (*models.Account, error) {
	return getAccount(ctx, s.db, queryGetAccount, businessID, accountID)
}

// CreateBankAccount registers a bank account. A non-zero opening balance is
// recorded as the account's first ledger entry so the ledger always sums to
// the stored balance.
func (s *AccountService) CreateBankAccount(ctx context.Context, businessID string, req models.CreateBankAccountRequest) (*models.Account, error) {
	if err := s.validator.ValidateBankAccount(&req); err != nil {
		return nil, err
	}

	opening := req.OpeningBalance.Decimal
	details := req.BankDetails()
	account := &models.Account{
		BusinessID:     businessID,
		Name:           req.AccountName,
		Kind:           models.AccountKindBank,
		Balance:        opening,
		OpeningBalance: opening,
		AsOfDate:       req.AsOfDate,
		BankDetails:    details,
	}
	if details == nil {
		details = &models.BankDetails{}
	}

	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, queryInsertBankAccount,
			businessID, account.Name, opening, account.AsOfDate,
			nullString(details.AccountNumber), nullString(details.IFSCCode), nullString(details.BranchName),
			nullString(details.AccountHolderName), nullString(details.UPIID),
		).Scan(&account.ID, &account.Version, &account.CreatedAt, &account.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create bank account: %w", err)
		}

		if opening.IsZero() {
			return nil
		}
		accountID := account.ID
		entry := models.LedgerTransaction{
			BusinessID:   businessID,
			AccountID:    &accountID,
			Type:         models.TxOpeningBalance,
			Direction:    models.DirectionAdd,
			Amount:       opening,
			BalanceAfter: decimal.NewNullDecimal(opening),
			Date:         account.AsOfDate,
			Remarks:      openingBalanceRemarks,
		}
		return insertTransaction(ctx, tx, &entry)
	})
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Bank account creation failed")
		return nil, err
	}

	s.audit.LogAccountCreated(businessID, account.ID, opening)
	logging.FromContext(ctx).WithField("account_id", account.ID).Info("Bank account created")
	return account, nil
}

// VerifyAccount rebuilds the account balance from its ledger and compares it
// with the stored balance.
func (s *AccountService) VerifyAccount(ctx context.Context, businessID string, accountID int64) (*models.IntegrityReport, error) {
	account, err := s.GetAccount(ctx, businessID, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := accountTransactions(ctx, s.db, businessID, accountID)
	if err != nil {
		return nil, err
	}

	sum, mismatch := ledger.Replay(entries)
	report := &models.IntegrityReport{
		AccountID:       account.ID,
		StoredBalance:   account.Balance,
		LedgerBalance:   sum,
		EntryCount:      len(entries),
		Consistent:      sum.Equal(account.Balance) && mismatch == nil,
		FirstMismatchID: mismatch,
	}
	if !report.Consistent {
		logging.FromContext(ctx).WithFields(logrus.Fields{
			"account_id":     account.ID,
			"stored_balance": account.Balance.String(),
			"ledger_balance": sum.String(),
		}).Error("Ledger does not reconcile with stored balance")
	}
	return report, nil
}
