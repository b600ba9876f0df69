package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bizledger/cashbank/internal/daterange"
	"github.com/bizledger/cashbank/internal/models"
	"github.com/bizledger/cashbank/internal/services"
)

// LedgerOperations records and reads ledger movements.
type LedgerOperations interface {
	Adjust(ctx context.Context, businessID string, req models.AdjustmentRequest, idempotencyKey string) (*models.AdjustmentResult, error)
	Transfer(ctx context.Context, businessID string, req models.TransferRequest, idempotencyKey string) (*models.TransferResult, error)
	ListTransactions(ctx context.Context, businessID string, filter models.TransactionFilter) ([]models.LedgerTransaction, error)
}

type DashboardReader interface {
	GetSummary(ctx context.Context, businessID string, dateRange models.DateRange) (*models.DashboardSummary, error)
}

// CashBankHandler serves the transaction side of the cash & bank API.
type CashBankHandler struct {
	ledger       LedgerOperations
	dashboard    DashboardReader
	ranges       *daterange.Resolver
	defaultRange daterange.Name
}

func NewCashBankHandler(ledger LedgerOperations, dashboard DashboardReader, ranges *daterange.Resolver, defaultRange daterange.Name) *CashBankHandler {
	return &CashBankHandler{
		ledger:       ledger,
		dashboard:    dashboard,
		ranges:       ranges,
		defaultRange: defaultRange,
	}
}

type transactionList struct {
	Transactions []models.LedgerTransaction `json:"transactions"`
	Count        int                        `json:"count"`
}

// Dashboard returns the reconciliation view for a date range
// @Summary Cash & bank dashboard
// @Description Account balances and the filtered transaction list with totals. Pass a named range, or start_date/end_date for a custom range.
// @Tags CashBank
// @Produce json
// @Security BearerAuth
// @Param range query string false "Named range, e.g. Today, This Month, Custom Date Range"
// @Param start_date query string false "Custom range start (YYYY-MM-DD)"
// @Param end_date query string false "Custom range end (YYYY-MM-DD)"
// @Success 200 {object} models.DashboardSummary
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /cash-bank/transactions/dashboard [get]
func (h *CashBankHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}

	dateRange, err := h.rangeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.dashboard.GetSummary(r.Context(), bizID, dateRange)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *CashBankHandler) rangeFromQuery(r *http.Request) (models.DateRange, error) {
	q := r.URL.Query()
	start, err := optionalDate(q.Get("start_date"), "start_date")
	if err != nil {
		return models.DateRange{}, err
	}
	end, err := optionalDate(q.Get("end_date"), "end_date")
	if err != nil {
		return models.DateRange{}, err
	}

	name := h.defaultRange
	switch {
	case q.Get("range") != "":
		name, err = daterange.ParseName(q.Get("range"))
		if err != nil {
			return models.DateRange{}, services.FieldError("range", "is not a supported date range")
		}
	case start != nil || end != nil:
		name = daterange.Custom
	}

	if name == daterange.Custom {
		dr, err := h.ranges.CustomRange(start, end)
		if err != nil {
			return models.DateRange{}, services.FieldError("start_date", "must not be after end_date")
		}
		return dr, nil
	}
	return h.ranges.Resolve(name)
}

func optionalDate(raw, field string) (*models.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, services.FieldError(field, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

// ListTransactions lists ledger entries
// @Summary List cash & bank transactions
// @Tags CashBank
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param account query int false "Restrict to one account"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {object} object{transactions=[]models.LedgerTransaction,count=int}
// @Failure 400 {object} services.ErrorResponse
// @Router /cash-bank/transactions [get]
func (h *CashBankHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filter models.TransactionFilter
	var err error
	if filter.Start, err = optionalDate(q.Get("start_date"), "start_date"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.End, err = optionalDate(q.Get("end_date"), "end_date"); err != nil {
		writeError(w, r, err)
		return
	}
	if raw := q.Get("account"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, services.FieldError("account", "must be a positive account id"))
			return
		}
		filter.AccountID = &id
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, r, services.FieldError("limit", "must be a positive number"))
			return
		}
		filter.Limit = limit
	}

	txns, err := h.ledger.ListTransactions(r.Context(), bizID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []models.LedgerTransaction{}
	}
	writeJSON(w, http.StatusOK, transactionList{Transactions: txns, Count: len(txns)})
}

// CreateAdjustment adds money to or reduces money from one account
// @Summary Adjust cash or bank balance
// @Tags CashBank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client generated key for safe retries"
// @Param request body models.AdjustmentRequest true "Adjustment"
// @Success 201 {object} models.AdjustmentResult
// @Success 200 {object} models.AdjustmentResult "Replayed submission"
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /cash-bank/adjustments [post]
func (h *CashBankHandler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.adjust(w, r, req)
}

func (h *CashBankHandler) adjust(w http.ResponseWriter, r *http.Request, req models.AdjustmentRequest) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}
	key, ok := idempotencyKey(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.Adjust(r.Context(), bizID, req, key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, createdStatus(result.Replayed), result)
}

// CreateTransfer moves money between accounts
// @Summary Transfer between cash and bank accounts
// @Tags CashBank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client generated key for safe retries"
// @Param request body models.TransferRequest true "Transfer"
// @Success 201 {object} models.TransferResult
// @Success 200 {object} models.TransferResult "Replayed submission"
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /cash-bank/transfers [post]
func (h *CashBankHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.transfer(w, r, req)
}

func (h *CashBankHandler) transfer(w http.ResponseWriter, r *http.Request, req models.TransferRequest) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}
	key, ok := idempotencyKey(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.Transfer(r.Context(), bizID, req, key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, createdStatus(result.Replayed), result)
}

// CreateTransaction accepts either an adjustment or a transfer body
// @Summary Record an adjustment or transfer
// @Description Bodies carrying from/to are transfers; bodies carrying type/money_type are adjustments.
// @Tags CashBank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client generated key for safe retries"
// @Param request body object true "AdjustmentRequest or TransferRequest"
// @Success 201 {object} object
// @Failure 400 {object} services.ErrorResponse
// @Router /cash-bank/transactions [post]
func (h *CashBankHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || probe == nil {
		services.SendErrorResponse(w, errInvalidBody.Error(), http.StatusBadRequest, nil)
		return
	}

	_, hasFrom := probe["from"]
	_, hasTo := probe["to"]
	_, hasType := probe["type"]
	_, hasMoneyType := probe["money_type"]

	switch {
	case hasFrom || hasTo:
		var req models.TransferRequest
		if err := decodeStrict(body, &req); err != nil {
			services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		h.transfer(w, r, req)
	case hasType || hasMoneyType:
		var req models.AdjustmentRequest
		if err := decodeStrict(body, &req); err != nil {
			services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		h.adjust(w, r, req)
	default:
		writeError(w, r, services.FieldError("type", "body must describe an adjustment (type, money_type) or a transfer (from, to)"))
	}
}
