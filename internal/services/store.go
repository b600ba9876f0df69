package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/bizledger/cashbank/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const accountColumns = `id, business_id, name, kind, balance, opening_balance, as_of_date,
	bank_account_number, ifsc_code, bank_branch_name, account_holder_name, upi_id,
	version, created_at, updated_at`

const (
	queryEnsureCashAccount = `
		INSERT INTO accounts (business_id, name, kind)
		VALUES ($1, 'Cash', 'CASH')
		ON CONFLICT (business_id) WHERE kind = 'CASH' DO NOTHING`

	queryCashAccountID = `SELECT id FROM accounts WHERE business_id = $1 AND kind = 'CASH'`

	queryGetAccount = `SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND business_id = $2`

	queryLockAccount = queryGetAccount + `
		FOR UPDATE`

	queryListAccounts = `SELECT ` + accountColumns + `
		FROM accounts
		WHERE business_id = $1
		ORDER BY id`

	queryInsertBankAccount = `
		INSERT INTO accounts (business_id, name, kind, balance, opening_balance, as_of_date,
			bank_account_number, ifsc_code, bank_branch_name, account_holder_name, upi_id)
		VALUES ($1, $2, 'BANK', $3, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version, created_at, updated_at`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`

	queryInsertTransaction = `
		INSERT INTO ledger_transactions (business_id, account_id, type, direction, amount,
			balance_after, txn_date, remarks, transfer_id, counter_account_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	transactionSelect = `
		SELECT t.id, t.business_id, t.account_id, COALESCE(a.name, ''), COALESCE(a.kind, ''),
			t.type, t.direction, t.amount, t.balance_after, t.txn_date, COALESCE(t.remarks, ''),
			COALESCE(t.transfer_id::text, ''), t.counter_account_id, COALESCE(t.idempotency_key, ''),
			t.created_at
		FROM ledger_transactions t
		LEFT JOIN accounts a ON a.id = t.account_id`

	queryTransactionsByIdempotencyKey = transactionSelect + `
		WHERE t.business_id = $1 AND t.idempotency_key = $2
		ORDER BY t.id`

	queryAccountTransactions = transactionSelect + `
		WHERE t.business_id = $1 AND t.account_id = $2
		ORDER BY t.id`

	queryUnlinkedTotal = `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_transactions
		WHERE business_id = $1 AND account_id IS NULL`
)

const (
	uniqueViolation = "23505"
	numericOverflow = "22003"
)

// balanceOutOfRange is reported when a balance no longer fits the
// NUMERIC(18,2) column.
func balanceOutOfRange() error {
	return FieldError("amount", "would take the account balance beyond the supported limit")
}

// inTx runs fn inside a database transaction, committing only when fn
// succeeds.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ensureCashAccount creates the business's cash account on first use and
// returns its id.
func ensureCashAccount(ctx context.Context, q DBTX, businessID string) (int64, error) {
	if _, err := q.ExecContext(ctx, queryEnsureCashAccount, businessID); err != nil {
		return 0, fmt.Errorf("failed to create cash account: %w", err)
	}

	var id int64
	if err := q.QueryRowContext(ctx, queryCashAccountID, businessID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to load cash account: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                                 models.Account
		kind                              string
		number, ifsc, branch, holder, upi sql.NullString
	)
	err := row.Scan(&a.ID, &a.BusinessID, &a.Name, &kind, &a.Balance, &a.OpeningBalance, &a.AsOfDate,
		&number, &ifsc, &branch, &holder, &upi,
		&a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Kind = models.AccountKind(kind)
	if number.Valid || ifsc.Valid || branch.Valid || holder.Valid || upi.Valid {
		a.BankDetails = &models.BankDetails{
			AccountNumber:     number.String,
			IFSCCode:          ifsc.String,
			BranchName:        branch.String,
			AccountHolderName: holder.String,
			UPIID:             upi.String,
		}
	}
	return &a, nil
}

func getAccount(ctx context.Context, q DBTX, query, businessID string, accountID int64) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, query, accountID, businessID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", accountID, err)
	}
	return account, nil
}

func lockAccount(ctx context.Context, tx *sql.Tx, businessID string, accountID int64) (*models.Account, error) {
	return getAccount(ctx, tx, queryLockAccount, businessID, accountID)
}

func listAccounts(ctx context.Context, q DBTX, businessID string) ([]models.Account, error) {
	rows, err := q.QueryContext(ctx, queryListAccounts, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// updateAccountBalance writes the new balance guarded by the version read
// under lock.
func updateAccountBalance(ctx context.Context, tx *sql.Tx, account *models.Account, newBalance decimal.Decimal, now time.Time) error {
	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance, now, account.ID, account.Version)
	if err != nil {
		if isNumericOverflow(err) {
			return balanceOutOfRange()
		}
		return fmt.Errorf("failed to update balance of account %d: %w", account.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %d: %w", account.ID, ErrConcurrentUpdate)
	}

	account.Balance = newBalance
	account.Version++
	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t *models.LedgerTransaction) error {
	err := tx.QueryRowContext(ctx, queryInsertTransaction,
		t.BusinessID, t.AccountID, string(t.Type), t.Direction, t.Amount,
		t.BalanceAfter, t.Date, nullString(t.Remarks), nullString(t.TransferID),
		t.CounterAccountID, nullString(t.IdempotencyKey),
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) && t.IdempotencyKey != "" {
			return fmt.Errorf("idempotency key %q: %w", t.IdempotencyKey, ErrDuplicateSubmission)
		}
		if isNumericOverflow(err) {
			return balanceOutOfRange()
		}
		return fmt.Errorf("failed to record ledger transaction: %w", err)
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]models.LedgerTransaction, error) {
	defer rows.Close()

	transactions := []models.LedgerTransaction{}
	for rows.Next() {
		var (
			t                  models.LedgerTransaction
			accountID, counter sql.NullInt64
			kind, txType       string
		)
		err := rows.Scan(&t.ID, &t.BusinessID, &accountID, &t.AccountName, &kind,
			&txType, &t.Direction, &t.Amount, &t.BalanceAfter, &t.Date, &t.Remarks,
			&t.TransferID, &counter, &t.IdempotencyKey, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger transaction: %w", err)
		}

		t.AccountKind = models.AccountKind(kind)
		t.Type = models.TransactionType(txType)
		if accountID.Valid {
			id := accountID.Int64
			t.AccountID = &id
		}
		if counter.Valid {
			id := counter.Int64
			t.CounterAccountID = &id
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func transactionsByIdempotencyKey(ctx context.Context, q DBTX, businessID, key string) ([]models.LedgerTransaction, error) {
	rows, err := q.QueryContext(ctx, queryTransactionsByIdempotencyKey, businessID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return scanTransactions(rows)
}

func accountTransactions(ctx context.Context, q DBTX, businessID string, accountID int64) ([]models.LedgerTransaction, error) {
	rows, err := q.QueryContext(ctx, queryAccountTransactions, businessID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger of account %d: %w", accountID, err)
	}
	return scanTransactions(rows)
}

// buildTransactionQuery assembles the filtered listing, newest first.
func buildTransactionQuery(businessID string, filter models.TransactionFilter) (string, []any) {
	var query strings.Builder
	query.WriteString(transactionSelect)
	query.WriteString(`
		WHERE t.business_id = $1`)

	args := []any{businessID}
	argIndex := 2

	if filter.Start != nil && filter.End != nil {
		fmt.Fprintf(&query, " AND t.txn_date >= $%d AND t.txn_date <= $%d", argIndex, argIndex+1)
		args = append(args, *filter.Start, *filter.End)
		argIndex += 2
	}

	if filter.AccountID != nil {
		fmt.Fprintf(&query, " AND t.account_id = $%d", argIndex)
		args = append(args, *filter.AccountID)
		argIndex++
	}

	query.WriteString(" ORDER BY t.txn_date DESC, t.id DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&query, " LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	return query.String(), args
}

func unlinkedTotal(ctx context.Context, q DBTX, businessID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := q.QueryRowContext(ctx, queryUnlinkedTotal, businessID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to total unlinked transactions: %w", err)
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isNumericOverflow(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == numericOverflow
}
