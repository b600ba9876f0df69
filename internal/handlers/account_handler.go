package handlers

import (
	"context"
	"net/http"

	"github.com/bizledger/cashbank/internal/models"
)

// AccountRegistry is the account side of the cash & bank API.
type AccountRegistry interface {
	ListAccounts(ctx context.Context, businessID string) (*models.AccountList, error)
	GetAccount(ctx context.Context, businessID string, accountID int64) (*models.Account, error)
	CreateBankAccount(ctx context.Context, businessID string, req models.CreateBankAccountRequest) (*models.Account, error)
	VerifyAccount(ctx context.Context, businessID string, accountID int64) (*models.IntegrityReport, error)
}

type AccountHandler struct {
	accounts AccountRegistry
}

func NewAccountHandler(accounts AccountRegistry) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// ListAccounts returns the cash account and all bank accounts
// @Summary List cash & bank accounts
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AccountList
// @Failure 401 {object} services.ErrorResponse
// @Router /cash-bank/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}

	list, err := h.accounts.ListAccounts(r.Context(), bizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list.BankAccounts == nil {
		list.BankAccounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateBankAccount registers a bank account
// @Summary Create bank account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateBankAccountRequest true "Bank account"
// @Success 201 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Router /cash-bank/accounts [post]
func (h *AccountHandler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}

	var req models.CreateBankAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.CreateBankAccount(r.Context(), bizID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// GetAccount returns one account
// @Summary Get account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} services.ErrorResponse
// @Router /cash-bank/accounts/{accountId} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), bizID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// VerifyAccount compares the stored balance with the ledger
// @Summary Verify account balance against its ledger entries
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Success 200 {object} models.IntegrityReport
// @Failure 404 {object} services.ErrorResponse
// @Router /cash-bank/accounts/{accountId}/verify [get]
func (h *AccountHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	report, err := h.accounts.VerifyAccount(r.Context(), bizID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
