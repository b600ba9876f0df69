package main

import (
	"errors"
	"fmt"
	"time"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bizledger/cashbank/internal/client"
	"github.com/bizledger/cashbank/internal/models"
)

// formatMoney renders d in the currency's display format, e.g. ₹1,500.00.
func formatMoney(d decimal.Decimal, currency string) string {
	minor := d.Shift(2).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

func parseAmount(raw string) (models.Amount, error) {
	if raw == "" {
		return models.Amount{}, errors.New("--amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return models.Amount{}, fmt.Errorf("invalid amount %q", raw)
	}
	return models.AmountOf(d), nil
}

// parseDateFlag parses a YYYY-MM-DD flag, defaulting to today's date.
func parseDateFlag(raw string, now time.Time) (models.Date, error) {
	if raw == "" {
		return models.DateOf(now), nil
	}
	return models.ParseDate(raw)
}

func optionalDateFlag(raw string) (*models.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func describeError(err error) string {
	var ve *client.ValidationError
	var ae *client.AuthError
	var ne *client.NetworkError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ae):
		return "Not authorised: " + ae.Message + " (set --token or CASHBANK_TOKEN)"
	case errors.As(err, &ne):
		return "Could not reach the ledger server: " + ne.Err.Error()
	default:
		return err.Error()
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func amountCell(d decimal.Decimal, currency string) string {
	if d.IsZero() {
		return "-"
	}
	return formatMoney(d, currency)
}
