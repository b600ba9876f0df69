package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/cashbank/internal/audit"
	"github.com/bizledger/cashbank/internal/ledger"
)

const testBusiness = "biz-1"

var testNow = time.Date(2024, time.May, 15, 9, 30, 0, 0, time.UTC)

type MockIdempotencyGuard struct {
	mock.Mock
}

func (m *MockIdempotencyGuard) Acquire(ctx context.Context, businessID, key string) (bool, error) {
	args := m.Called(businessID, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyGuard) Release(ctx context.Context, businessID, key string) {
	m.Called(businessID, key)
}

// decimalArg matches a driver argument holding a numerically equal decimal.
type decimalArg string

func (d decimalArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	got, err := decimal.NewFromString(s)
	return err == nil && got.Equal(decimal.RequireFromString(string(d)))
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestAudit() *audit.Logger {
	log, _ := test.NewNullLogger()
	return audit.NewLogger(log)
}

func newTestLedgerService(t *testing.T, policy ledger.Policy, guard IdempotencyGuard) (*LedgerService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	if guard == nil {
		guard = NewIdempotencyGuard(nil, 0)
	}
	s := NewLedgerService(db, policy, guard, NewValidationHelper(), newTestAudit())
	s.now = func() time.Time { return testNow }
	return s, mock
}

var accountColumnNames = []string{
	"id", "business_id", "name", "kind", "balance", "opening_balance", "as_of_date",
	"bank_account_number", "ifsc_code", "bank_branch_name", "account_holder_name", "upi_id",
	"version", "created_at", "updated_at",
}

var transactionColumnNames = []string{
	"id", "business_id", "account_id", "account_name", "account_kind",
	"type", "direction", "amount", "balance_after", "txn_date", "remarks",
	"transfer_id", "counter_account_id", "idempotency_key", "created_at",
}

func cashAccountRows(id int64, balance string, version int) *sqlmock.Rows {
	return sqlmock.NewRows(accountColumnNames).
		AddRow(id, testBusiness, "Cash", "CASH", balance, "0", testNow, nil, nil, nil, nil, nil, version, testNow, testNow)
}

func bankAccountRows(id int64, name, balance string, version int) *sqlmock.Rows {
	return sqlmock.NewRows(accountColumnNames).
		AddRow(id, testBusiness, name, "BANK", balance, balance, testNow, "50100012345678", "HDFC0001234", "Andheri", "Asha Traders", "asha@hdfcbank", version, testNow, testNow)
}

// expectCashResolution expects the lazy creation and lookup of the cash
// account.
func expectCashResolution(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectExec(queryEnsureCashAccount).
		WithArgs(testBusiness).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(queryCashAccountID).
		WithArgs(testBusiness).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

func insertedRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, testNow)
}

func int64Ptr(v int64) *int64 { return &v }
