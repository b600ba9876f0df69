package services

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/bizledger/cashbank/internal/models"
)

// DashboardService composes the account registry and the ledger into the
// reconciliation view. Balances always come from the registry; the listing
// totals are computed from the filtered rows only.
type DashboardService struct {
	db       *sql.DB
	accounts *AccountService
	ledger   *LedgerService
}

func NewDashboardService(db *sql.DB, accounts *AccountService, ledgerService *LedgerService) *DashboardService {
	return &DashboardService{db: db, accounts: accounts, ledger: ledgerService}
}

func (s *DashboardService) GetSummary(ctx context.Context, businessID string, dateRange models.DateRange) (*models.DashboardSummary, error) {
	list, err := s.accounts.ListAccounts(ctx, businessID)
	if err != nil {
		return nil, err
	}

	unlinked, err := unlinkedTotal(ctx, s.db, businessID)
	if err != nil {
		return nil, err
	}

	var filter models.TransactionFilter
	if dateRange.Bounded() {
		filter.Start, filter.End = dateRange.Start, dateRange.End
	}
	transactions, err := s.ledger.ListTransactions(ctx, businessID, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]models.TransactionRow, 0, len(transactions))
	totals := models.Totals{Paid: decimal.Zero, Received: decimal.Zero, Balance: decimal.Zero}
	for _, t := range transactions {
		row := models.NewTransactionRow(t)
		totals.Paid = totals.Paid.Add(row.Paid)
		totals.Received = totals.Received.Add(row.Received)
		if row.Balance != nil {
			totals.Balance = totals.Balance.Add(*row.Balance)
		}
		rows = append(rows, row)
	}

	return &models.DashboardSummary{
		Range:                dateRange,
		TotalBalance:         list.Total(),
		Cash:                 list.Cash,
		BankAccounts:         list.BankAccounts,
		UnlinkedTransactions: unlinked,
		Transactions:         rows,
		Totals:               totals,
	}, nil
}
