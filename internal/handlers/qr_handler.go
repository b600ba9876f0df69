package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bizledger/cashbank/internal/services"
)

type UPIQRGenerator interface {
	UPIPaymentQR(ctx context.Context, businessID string, accountID int64, amount decimal.Decimal) ([]byte, string, error)
}

type QRHandler struct {
	service UPIQRGenerator
}

func NewQRHandler(service UPIQRGenerator) *QRHandler {
	return &QRHandler{service: service}
}

// UPIQR renders a UPI payment QR code for a bank account
// @Summary Generate UPI QR Code
// @Description PNG QR code carrying a upi://pay link for the account's UPI ID. The amount is optional.
// @Tags QR
// @Produce png
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Param amount query string false "Amount to prefill, e.g. 250.00"
// @Success 200 {file} binary
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /cash-bank/accounts/{accountId}/upi-qr [get]
func (h *QRHandler) UPIQR(w http.ResponseWriter, r *http.Request) {
	bizID, ok := businessID(w, r)
	if !ok {
		return
	}
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	amount := decimal.Zero
	if raw := r.URL.Query().Get("amount"); raw != "" {
		var err error
		amount, err = decimal.NewFromString(raw)
		if err != nil {
			writeError(w, r, services.FieldError("amount", "must be a decimal number"))
			return
		}
	}

	png, uri, err := h.service.UPIPaymentQR(r.Context(), bizID, id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-UPI-URI", uri)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
