package audit

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	EventAccountCreated = "ACCOUNT_CREATED"
	EventAdjustment     = "ADJUSTMENT"
	EventTransfer       = "TRANSFER"
	EventError          = "ERROR"
)

// Event is a single audit record of a balance-affecting operation.
type Event struct {
	Timestamp     time.Time
	EventType     string
	BusinessID    string
	TransactionID string
	AccountID     int64
	Amount        decimal.Decimal
	Status        string
	Details       map[string]any
}

// Logger writes audit events through logrus with the "audit" marker so they
// can be routed separately from application logs.
type Logger struct {
	log logrus.FieldLogger
	now func() time.Time
}

func NewLogger(log logrus.FieldLogger) *Logger {
	return &Logger{log: log, now: time.Now}
}

func (a *Logger) LogAccountCreated(businessID string, accountID int64, openingBalance decimal.Decimal) {
	a.write(Event{
		EventType:  EventAccountCreated,
		BusinessID: businessID,
		AccountID:  accountID,
		Amount:     openingBalance,
		Status:     "SUCCESS",
	})
}

func (a *Logger) LogAdjustment(businessID string, transactionID, accountID int64, amount decimal.Decimal, status string) {
	a.write(Event{
		EventType:     EventAdjustment,
		BusinessID:    businessID,
		TransactionID: formatID(transactionID),
		AccountID:     accountID,
		Amount:        amount,
		Status:        status,
	})
}

func (a *Logger) LogTransfer(businessID, transferID string, fromAccount, toAccount int64, amount decimal.Decimal, status string) {
	a.write(Event{
		EventType:     EventTransfer,
		BusinessID:    businessID,
		TransactionID: transferID,
		Amount:        amount,
		Status:        status,
		Details: map[string]any{
			"from_account": fromAccount,
			"to_account":   toAccount,
		},
	})
}

func (a *Logger) LogError(businessID, operation string, accountID int64, err error) {
	a.write(Event{
		EventType:  EventError,
		BusinessID: businessID,
		AccountID:  accountID,
		Status:     "FAILED",
		Details: map[string]any{
			"operation": operation,
			"error":     err.Error(),
		},
	})
}

func (a *Logger) write(event Event) {
	event.Timestamp = a.now()
	fields := logrus.Fields{
		"audit":       true,
		"event_type":  event.EventType,
		"business_id": event.BusinessID,
		"status":      event.Status,
		"event_time":  event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if event.TransactionID != "" {
		fields["transaction_id"] = event.TransactionID
	}
	if event.AccountID != 0 {
		fields["account_id"] = event.AccountID
	}
	if !event.Amount.IsZero() {
		fields["amount"] = event.Amount.StringFixed(2)
	}
	for k, v := range event.Details {
		fields[k] = v
	}

	entry := a.log.WithFields(fields)
	if event.Status == "FAILED" {
		entry.Warn("AUDIT")
		return
	}
	entry.Info("AUDIT")
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
