package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/cashbank/internal/models"
)

func newTestAccountService(t *testing.T) (*AccountService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewAccountService(db, NewValidationHelper(), newTestAudit()), mock
}

func TestAccountService_CreateBankAccount(t *testing.T) {
	ctx := context.Background()
	asOf := models.NewDate(2024, time.January, 1)

	t.Run("opening balance is recorded in the ledger", func(t *testing.T) {
		service, mock := newTestAccountService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(queryInsertBankAccount).
			WithArgs(testBusiness, "HDFC Main", decimalArg("10000"), asOf.Time,
				"50100012345678", "HDFC0001234", "Andheri", "Asha Traders", "asha@hdfcbank").
			WillReturnRows(sqlmock.NewRows([]string{"id", "version", "created_at", "updated_at"}).
				AddRow(2, 0, testNow, testNow))
		mock.ExpectQuery(queryInsertTransaction).
			WithArgs(testBusiness, int64(2), "OPENING_BALANCE", "add", decimalArg("10000"), decimalArg("10000"),
				asOf.Time, openingBalanceRemarks, nil, nil, nil).
			WillReturnRows(insertedRows(1))
		mock.ExpectCommit()

		account, err := service.CreateBankAccount(ctx, testBusiness, models.CreateBankAccountRequest{
			AccountName:          "HDFC Main",
			AccountType:          "Bank",
			OpeningBalance:       models.MustAmount("10000"),
			AsOfDate:             asOf,
			BankAccountNumber:    "50100012345678",
			ConfirmAccountNumber: "50100012345678",
			IFSCCode:             "hdfc0001234",
			BankBranchName:       "Andheri",
			AccountHolderName:    "Asha Traders",
			UPIID:                "asha@hdfcbank",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(2), account.ID)
		assert.Equal(t, models.AccountKindBank, account.Kind)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(10000)))
		require.NotNil(t, account.BankDetails)
		assert.Equal(t, "HDFC0001234", account.BankDetails.IFSCCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank opening balance defaults to zero without a ledger entry", func(t *testing.T) {
		service, mock := newTestAccountService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(queryInsertBankAccount).
			WithArgs(testBusiness, "Petty Bank", decimalArg("0"), asOf.Time, nil, nil, nil, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version", "created_at", "updated_at"}).
				AddRow(3, 0, testNow, testNow))
		mock.ExpectCommit()

		account, err := service.CreateBankAccount(ctx, testBusiness, models.CreateBankAccountRequest{
			AccountName: "Petty Bank",
			AsOfDate:    asOf,
		})
		require.NoError(t, err)
		assert.True(t, account.Balance.IsZero())
		assert.Nil(t, account.BankDetails)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("name and as-of date are required", func(t *testing.T) {
		service, mock := newTestAccountService(t)

		_, err := service.CreateBankAccount(ctx, testBusiness, models.CreateBankAccountRequest{AccountName: "  "})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "is required", ve.Fields["account_name"])
		assert.Equal(t, "is required", ve.Fields["as_of_date"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("partial bank details are rejected", func(t *testing.T) {
		service, _ := newTestAccountService(t)

		_, err := service.CreateBankAccount(ctx, testBusiness, models.CreateBankAccountRequest{
			AccountName:       "HDFC Main",
			AsOfDate:          asOf,
			BankAccountNumber: "50100012345678",
		})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "confirm_bank_account_number")
		assert.Contains(t, ve.Fields, "ifsc_code")
		assert.Contains(t, ve.Fields, "bank_branch_name")
		assert.Contains(t, ve.Fields, "account_holder_name")
		assert.NotContains(t, ve.Fields, "upi_id")
	})

	t.Run("re-entered account number must match", func(t *testing.T) {
		service, _ := newTestAccountService(t)

		_, err := service.CreateBankAccount(ctx, testBusiness, models.CreateBankAccountRequest{
			AccountName:          "HDFC Main",
			AsOfDate:             asOf,
			BankAccountNumber:    "50100012345678",
			ConfirmAccountNumber: "50100012345679",
			IFSCCode:             "HDFC0001234",
			BankBranchName:       "Andheri",
			AccountHolderName:    "Asha Traders",
		})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "does not match", ve.Fields["confirm_bank_account_number"])
		assert.Len(t, ve.Fields, 1)
	})

	t.Run("negative opening balance is rejected", func(t *testing.T) {
		service, _ := newTestAccountService(t)

		_, err := service.CreateBankAccount(ctx, testBusiness, models.CreateBankAccountRequest{
			AccountName:    "HDFC Main",
			AsOfDate:       asOf,
			OpeningBalance: models.MustAmount("-1"),
		})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "must not be negative", ve.Fields["opening_balance"])
	})
}

func TestAccountService_ListAccounts(t *testing.T) {
	service, mock := newTestAccountService(t)

	expectCashResolution(mock, 1)
	mock.ExpectQuery(queryListAccounts).
		WithArgs(testBusiness).
		WillReturnRows(sqlmock.NewRows(accountColumnNames).
			AddRow(1, testBusiness, "Cash", "CASH", "1500", "0", testNow, nil, nil, nil, nil, nil, 2, testNow, testNow).
			AddRow(2, testBusiness, "HDFC Main", "BANK", "10000", "10000", testNow, "50100012345678", "HDFC0001234", "Andheri", "Asha Traders", nil, 0, testNow, testNow).
			AddRow(4, testBusiness, "ICICI", "BANK", "250.50", "0", testNow, nil, nil, nil, nil, nil, 0, testNow, testNow))

	list, err := service.ListAccounts(context.Background(), testBusiness)
	require.NoError(t, err)

	assert.Equal(t, int64(1), list.Cash.ID)
	assert.True(t, list.Cash.Balance.Equal(decimal.NewFromInt(1500)))
	require.Len(t, list.BankAccounts, 2)
	assert.Equal(t, "HDFC Main", list.BankAccounts[0].Name)
	assert.True(t, list.BankAccounts[0].Balance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, list.BankAccounts[0].IsMain)
	assert.False(t, list.BankAccounts[1].IsMain)
	assert.Nil(t, list.BankAccounts[1].BankDetails)
	assert.True(t, list.Total().Equal(decimal.RequireFromString("11750.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_GetAccountNotFound(t *testing.T) {
	service, mock := newTestAccountService(t)

	mock.ExpectQuery(queryGetAccount).
		WithArgs(int64(9), testBusiness).
		WillReturnRows(sqlmock.NewRows(accountColumnNames))

	_, err := service.GetAccount(context.Background(), testBusiness, 9)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_VerifyAccount(t *testing.T) {
	ledgerRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(transactionColumnNames).
			AddRow(1, testBusiness, 2, "HDFC Main", "BANK", "OPENING_BALANCE", "add", "10000", "10000", testNow, "Opening balance", "", nil, "", testNow).
			AddRow(5, testBusiness, 2, "HDFC Main", "BANK", "TRANSFER_IN", "add", "2000", "12000", testNow, "", "2f1b7a52-8f7e-4a55-b1f6-3d8a1c9e0b11", 1, "", testNow)
	}

	t.Run("consistent", func(t *testing.T) {
		service, mock := newTestAccountService(t)
		mock.ExpectQuery(queryGetAccount).
			WithArgs(int64(2), testBusiness).
			WillReturnRows(bankAccountRows(2, "HDFC Main", "12000", 2))
		mock.ExpectQuery(queryAccountTransactions).
			WithArgs(testBusiness, int64(2)).
			WillReturnRows(ledgerRows())

		report, err := service.VerifyAccount(context.Background(), testBusiness, 2)
		require.NoError(t, err)
		assert.True(t, report.Consistent)
		assert.Equal(t, 2, report.EntryCount)
		assert.Nil(t, report.FirstMismatchID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("drifted balance", func(t *testing.T) {
		service, mock := newTestAccountService(t)
		mock.ExpectQuery(queryGetAccount).
			WithArgs(int64(2), testBusiness).
			WillReturnRows(bankAccountRows(2, "HDFC Main", "12500", 3))
		mock.ExpectQuery(queryAccountTransactions).
			WithArgs(testBusiness, int64(2)).
			WillReturnRows(ledgerRows())

		report, err := service.VerifyAccount(context.Background(), testBusiness, 2)
		require.NoError(t, err)
		assert.False(t, report.Consistent)
		assert.True(t, report.LedgerBalance.Equal(decimal.NewFromInt(12000)))
		assert.True(t, report.StoredBalance.Equal(decimal.NewFromInt(12500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
