package services

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/bizledger/cashbank/internal/models"
)

const qrImageSize = 256

// QRService renders UPI payment QR codes for bank accounts that carry a
// UPI handle.
type QRService struct {
	accounts *AccountService
	currency string
}

func NewQRService(accounts *AccountService, currency string) *QRService {
	return &QRService{accounts: accounts, currency: currency}
}

// PaymentURI builds the upi://pay link for account. A zero amount leaves the
// amount for the payer to enter.
func (s *QRService) PaymentURI(account *models.Account, amount decimal.Decimal) (string, error) {
	if !account.IsBank() || account.BankDetails == nil || account.BankDetails.UPIID == "" {
		return "", FieldError("upi_id", "account has no UPI ID")
	}
	if amount.IsNegative() {
		return "", FieldError("amount", "must not be negative")
	}

	payee := account.BankDetails.AccountHolderName
	if payee == "" {
		payee = account.Name
	}

	params := url.Values{}
	params.Set("pa", account.BankDetails.UPIID)
	params.Set("pn", payee)
	params.Set("cu", s.currency)
	if amount.IsPositive() {
		params.Set("am", amount.StringFixed(2))
	}
	return "upi://pay?" + params.Encode(), nil
}

// UPIPaymentQR returns the PNG encoded QR code and the URI it carries.
func (s *QRService) UPIPaymentQR(ctx context.Context, businessID string, accountID int64, amount decimal.Decimal) ([]byte, string, error) {
	account, err := s.accounts.GetAccount(ctx, businessID, accountID)
	if err != nil {
		return nil, "", err
	}

	uri, err := s.PaymentURI(account, amount)
	if err != nil {
		return nil, "", err
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, "", err
	}
	return png, uri, nil
}
