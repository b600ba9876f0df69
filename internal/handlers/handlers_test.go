package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/cashbank/internal/daterange"
	mw "github.com/bizledger/cashbank/internal/middleware"
	"github.com/bizledger/cashbank/internal/models"
	"github.com/bizledger/cashbank/internal/services"
)

const testBusiness = "biz-1"

type MockLedger struct{ mock.Mock }

func (m *MockLedger) Adjust(ctx context.Context, businessID string, req models.AdjustmentRequest, key string) (*models.AdjustmentResult, error) {
	args := m.Called(ctx, businessID, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdjustmentResult), args.Error(1)
}

func (m *MockLedger) Transfer(ctx context.Context, businessID string, req models.TransferRequest, key string) (*models.TransferResult, error) {
	args := m.Called(ctx, businessID, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferResult), args.Error(1)
}

func (m *MockLedger) ListTransactions(ctx context.Context, businessID string, filter models.TransactionFilter) ([]models.LedgerTransaction, error) {
	args := m.Called(ctx, businessID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerTransaction), args.Error(1)
}

type MockDashboard struct{ mock.Mock }

func (m *MockDashboard) GetSummary(ctx context.Context, businessID string, dr models.DateRange) (*models.DashboardSummary, error) {
	args := m.Called(ctx, businessID, dr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

type MockAccounts struct{ mock.Mock }

func (m *MockAccounts) ListAccounts(ctx context.Context, businessID string) (*models.AccountList, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountList), args.Error(1)
}

func (m *MockAccounts) GetAccount(ctx context.Context, businessID string, id int64) (*models.Account, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccounts) CreateBankAccount(ctx context.Context, businessID string, req models.CreateBankAccountRequest) (*models.Account, error) {
	args := m.Called(ctx, businessID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccounts) VerifyAccount(ctx context.Context, businessID string, id int64) (*models.IntegrityReport, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrityReport), args.Error(1)
}

type MockQR struct{ mock.Mock }

func (m *MockQR) UPIPaymentQR(ctx context.Context, businessID string, id int64, amount decimal.Decimal) ([]byte, string, error) {
	args := m.Called(ctx, businessID, id, amount)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type testServer struct {
	ledger    *MockLedger
	dashboard *MockDashboard
	accounts  *MockAccounts
	qr        *MockQR
	router    chi.Router
}

// fixed Wednesday 2024-05-15 in UTC
func newTestServer() *testServer {
	ts := &testServer{
		ledger:    new(MockLedger),
		dashboard: new(MockDashboard),
		accounts:  new(MockAccounts),
		qr:        new(MockQR),
	}
	resolver := daterange.NewResolver(time.April, time.UTC).WithClock(func() time.Time {
		return time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)
	})
	cb := NewCashBankHandler(ts.ledger, ts.dashboard, resolver, daterange.Last30Days)
	ah := NewAccountHandler(ts.accounts)
	qh := NewQRHandler(ts.qr)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(mw.WithBusinessID(req.Context(), testBusiness)))
		})
	})
	r.Get("/cash-bank/transactions/dashboard", cb.Dashboard)
	r.Get("/cash-bank/transactions", cb.ListTransactions)
	r.Post("/cash-bank/transactions", cb.CreateTransaction)
	r.Post("/cash-bank/adjustments", cb.CreateAdjustment)
	r.Post("/cash-bank/transfers", cb.CreateTransfer)
	r.Get("/cash-bank/accounts", ah.ListAccounts)
	r.Post("/cash-bank/accounts", ah.CreateBankAccount)
	r.Get("/cash-bank/accounts/{accountId}", ah.GetAccount)
	r.Get("/cash-bank/accounts/{accountId}/verify", ah.VerifyAccount)
	r.Get("/cash-bank/accounts/{accountId}/upi-qr", qh.UPIQR)
	ts.router = r
	return ts
}

func (ts *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) services.ErrorResponse {
	t.Helper()
	var resp services.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func date(y int, m time.Month, d int) *models.Date {
	v := models.NewDate(y, m, d)
	return &v
}

func TestCreateAdjustment(t *testing.T) {
	ts := newTestServer()
	result := &models.AdjustmentResult{
		Success: true,
		Transaction: models.LedgerTransaction{
			ID:     11,
			Type:   models.TxAdjustment,
			Amount: decimal.NewFromInt(500),
		},
	}
	ts.ledger.On("Adjust", mock.Anything, testBusiness, mock.MatchedBy(func(req models.AdjustmentRequest) bool {
		return req.Type == "add" && req.MoneyType == "Cash" && req.Amount.Equal(decimal.NewFromInt(500))
	}), "key-1").Return(result, nil)

	rr := ts.do(http.MethodPost, "/cash-bank/adjustments",
		`{"type":"add","money_type":"Cash","amount":"500","date":"2024-05-15"}`,
		map[string]string{"Idempotency-Key": "key-1"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var got models.AdjustmentResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(11), got.Transaction.ID)
	ts.ledger.AssertExpectations(t)
}

func TestCreateAdjustmentReplayReturnsOK(t *testing.T) {
	ts := newTestServer()
	ts.ledger.On("Adjust", mock.Anything, testBusiness, mock.Anything, "key-1").
		Return(&models.AdjustmentResult{Success: true, Replayed: true}, nil)

	rr := ts.do(http.MethodPost, "/cash-bank/adjustments",
		`{"type":"add","money_type":"Cash","amount":"500","date":"2024-05-15"}`,
		map[string]string{"Idempotency-Key": "key-1"})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateAdjustmentRejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"not json", `{"type":`, "Invalid request body"},
		{"unknown field", `{"type":"add","colour":"red"}`, "Invalid request body"},
		{"two objects", `{"type":"add"}{"type":"reduce"}`, "Request body must only contain a single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			rr := ts.do(http.MethodPost, "/cash-bank/adjustments", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, decodeError(t, rr).Error)
			ts.ledger.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateAdjustmentErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", services.FieldError("amount", "must be greater than zero"), http.StatusBadRequest},
		{"not found", services.ErrAccountNotFound, http.StatusNotFound},
		{"in flight", services.ErrDuplicateSubmission, http.StatusConflict},
		{"optimistic lock", services.ErrConcurrentUpdate, http.StatusConflict},
		{"insufficient", &services.InsufficientBalanceError{AccountID: 1, Balance: decimal.NewFromInt(10), Amount: decimal.NewFromInt(20)}, http.StatusUnprocessableEntity},
		{"backend", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.ledger.On("Adjust", mock.Anything, testBusiness, mock.Anything, "").Return(nil, tt.err)

			rr := ts.do(http.MethodPost, "/cash-bank/adjustments",
				`{"type":"reduce","money_type":"Cash","amount":"20","date":"2024-05-15"}`, nil)

			assert.Equal(t, tt.status, rr.Code)
			resp := decodeError(t, rr)
			switch tt.status {
			case http.StatusBadRequest:
				assert.Equal(t, "Validation failed", resp.Error)
				assert.Equal(t, "must be greater than zero", resp.Details["amount"])
			case http.StatusInternalServerError:
				assert.Equal(t, "Internal server error", resp.Error)
			default:
				assert.Equal(t, tt.err.Error(), resp.Error)
			}
		})
	}
}

func TestIdempotencyKeyTooLong(t *testing.T) {
	ts := newTestServer()
	rr := ts.do(http.MethodPost, "/cash-bank/adjustments",
		`{"type":"add","money_type":"Cash","amount":"1","date":"2024-05-15"}`,
		map[string]string{"Idempotency-Key": strings.Repeat("k", 129)})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Details, "Idempotency-Key")
}

func TestCreateTransfer(t *testing.T) {
	ts := newTestServer()
	ts.ledger.On("Transfer", mock.Anything, testBusiness, mock.MatchedBy(func(req models.TransferRequest) bool {
		return req.From == "cash" && req.To == "bank" && *req.ToAccountID == 2
	}), "").Return(&models.TransferResult{
		Success:    true,
		TransferID: "5b7d3c1e-0000-4000-8000-000000000001",
		Transactions: []models.LedgerTransaction{
			{ID: 1, Type: models.TxTransferOut, Amount: decimal.NewFromInt(-300)},
			{ID: 2, Type: models.TxTransferIn, Amount: decimal.NewFromInt(300)},
		},
	}, nil)

	rr := ts.do(http.MethodPost, "/cash-bank/transfers",
		`{"from":"cash","to":"bank","to_account_id":2,"amount":"300","date":"2024-05-15"}`, nil)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got models.TransferResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Transactions, 2)
	ts.ledger.AssertExpectations(t)
}

func TestCreateTransactionDispatchesOnBodyShape(t *testing.T) {
	t.Run("transfer", func(t *testing.T) {
		ts := newTestServer()
		ts.ledger.On("Transfer", mock.Anything, testBusiness, mock.Anything, "").
			Return(&models.TransferResult{Success: true}, nil)

		rr := ts.do(http.MethodPost, "/cash-bank/transactions",
			`{"from":"bank","from_account_id":2,"to":"cash","amount":"100","date":"2024-05-15"}`, nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		ts.ledger.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("adjustment", func(t *testing.T) {
		ts := newTestServer()
		ts.ledger.On("Adjust", mock.Anything, testBusiness, mock.Anything, "").
			Return(&models.AdjustmentResult{Success: true}, nil)

		rr := ts.do(http.MethodPost, "/cash-bank/transactions",
			`{"type":"add","money_type":"Bank","account_id":2,"amount":"100","date":"2024-05-15"}`, nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		ts.ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mixed shape is rejected", func(t *testing.T) {
		ts := newTestServer()
		rr := ts.do(http.MethodPost, "/cash-bank/transactions",
			`{"from":"cash","to":"bank","type":"add","amount":"100"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request body", decodeError(t, rr).Error)
	})

	t.Run("unknown shape", func(t *testing.T) {
		ts := newTestServer()
		rr := ts.do(http.MethodPost, "/cash-bank/transactions", `{"amount":"100"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Details, "type")
	})
}

func TestDashboardRangeSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.DateRange
	}{
		{
			name:  "default range",
			query: "",
			want:  models.DateRange{Name: "Last 30 Days", Start: date(2024, 4, 16), End: date(2024, 5, 15)},
		},
		{
			name:  "named range",
			query: "?range=today",
			want:  models.DateRange{Name: "Today", Start: date(2024, 5, 15), End: date(2024, 5, 15)},
		},
		{
			name:  "explicit custom bounds",
			query: "?start_date=2024-05-01&end_date=2024-05-10",
			want:  models.DateRange{Name: "Custom Date Range", Start: date(2024, 5, 1), End: date(2024, 5, 10)},
		},
		{
			name:  "custom with start only is unbounded",
			query: "?range=Custom+Date+Range&start_date=2024-05-01",
			want:  models.DateRange{Name: "Custom Date Range"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.dashboard.On("GetSummary", mock.Anything, testBusiness, tt.want).
				Return(&models.DashboardSummary{Range: tt.want}, nil)

			rr := ts.do(http.MethodGet, "/cash-bank/transactions/dashboard"+tt.query, "", nil)

			assert.Equal(t, http.StatusOK, rr.Code)
			ts.dashboard.AssertExpectations(t)
		})
	}
}

func TestDashboardRejectsBadQuery(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{"?range=fortnight", "range"},
		{"?start_date=15-05-2024", "start_date"},
		{"?start_date=2024-05-10&end_date=2024-05-01", "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ts := newTestServer()
			rr := ts.do(http.MethodGet, "/cash-bank/transactions/dashboard"+tt.query, "", nil)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr).Details, tt.field)
		})
	}
}

func TestListTransactions(t *testing.T) {
	ts := newTestServer()
	account := int64(2)
	ts.ledger.On("ListTransactions", mock.Anything, testBusiness, models.TransactionFilter{
		Start:     date(2024, 5, 1),
		AccountID: &account,
		Limit:     20,
	}).Return(nil, nil)

	rr := ts.do(http.MethodGet, "/cash-bank/transactions?start_date=2024-05-01&account=2&limit=20", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transactions":[],"count":0}`, rr.Body.String())
}

func TestListTransactionsRejectsBadAccount(t *testing.T) {
	ts := newTestServer()
	rr := ts.do(http.MethodGet, "/cash-bank/transactions?account=abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Details, "account")
}

func TestAccountEndpoints(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		ts := newTestServer()
		ts.accounts.On("ListAccounts", mock.Anything, testBusiness).Return(&models.AccountList{
			Cash: models.Account{ID: 1, Name: "Cash", Kind: models.AccountKindCash},
		}, nil)

		rr := ts.do(http.MethodGet, "/cash-bank/accounts", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.JSONEq(t, `[]`, string(got["bank_accounts"]))
	})

	t.Run("create", func(t *testing.T) {
		ts := newTestServer()
		ts.accounts.On("CreateBankAccount", mock.Anything, testBusiness, mock.MatchedBy(func(req models.CreateBankAccountRequest) bool {
			return req.AccountName == "HDFC Main" && req.OpeningBalance.Equal(decimal.NewFromInt(10000))
		})).Return(&models.Account{ID: 2, Name: "HDFC Main", Kind: models.AccountKindBank, Balance: decimal.NewFromInt(10000)}, nil)

		rr := ts.do(http.MethodPost, "/cash-bank/accounts",
			`{"account_name":"HDFC Main","opening_balance":"10000","as_of_date":"2024-05-01"}`, nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		ts.accounts.AssertExpectations(t)
	})

	t.Run("get not found", func(t *testing.T) {
		ts := newTestServer()
		ts.accounts.On("GetAccount", mock.Anything, testBusiness, int64(99)).Return(nil, services.ErrAccountNotFound)

		rr := ts.do(http.MethodGet, "/cash-bank/accounts/99", "", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		ts := newTestServer()
		rr := ts.do(http.MethodGet, "/cash-bank/accounts/abc", "", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid account ID", decodeError(t, rr).Error)
	})

	t.Run("verify", func(t *testing.T) {
		ts := newTestServer()
		ts.accounts.On("VerifyAccount", mock.Anything, testBusiness, int64(2)).Return(&models.IntegrityReport{
			AccountID:  2,
			Consistent: true,
			EntryCount: 3,
		}, nil)

		rr := ts.do(http.MethodGet, "/cash-bank/accounts/2/verify", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got models.IntegrityReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.True(t, got.Consistent)
	})
}

func TestUPIQR(t *testing.T) {
	ts := newTestServer()
	png := []byte{0x89, 'P', 'N', 'G'}
	ts.qr.On("UPIPaymentQR", mock.Anything, testBusiness, int64(2), mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("250.50"))
	})).Return(png, "upi://pay?pa=asha@hdfcbank", nil)

	rr := ts.do(http.MethodGet, "/cash-bank/accounts/2/upi-qr?amount=250.50", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "upi://pay?pa=asha@hdfcbank", rr.Header().Get("X-UPI-URI"))
	assert.Equal(t, png, rr.Body.Bytes())
}

func TestUPIQRWithoutUPIID(t *testing.T) {
	ts := newTestServer()
	ts.qr.On("UPIPaymentQR", mock.Anything, testBusiness, int64(2), mock.Anything).
		Return(nil, "", services.FieldError("upi_id", "account has no UPI ID"))

	rr := ts.do(http.MethodGet, "/cash-bank/accounts/2/upi-qr", "", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "account has no UPI ID", decodeError(t, rr).Details["upi_id"])
}

func TestMissingBusinessIsUnauthorized(t *testing.T) {
	h := NewAccountHandler(new(MockAccounts))
	rr := httptest.NewRecorder()
	h.ListAccounts(rr, httptest.NewRequest(http.MethodGet, "/cash-bank/accounts", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
