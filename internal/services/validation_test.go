package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/cashbank/internal/ledger"
	"github.com/bizledger/cashbank/internal/models"
)

type TestStruct struct {
	Name string `json:"name" validate:"required,min=2"`
	IFSC string `json:"ifsc" validate:"omitempty,ifsc"`
	UPI  string `json:"upi" validate:"omitempty,upi"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		err := vh.ValidateStruct(&TestStruct{Name: "Asha", IFSC: "SBIN0004321", UPI: "asha.traders@okaxis"})
		assert.NoError(t, err)
	})

	t.Run("fields are reported by json name", func(t *testing.T) {
		err := vh.ValidateStruct(&TestStruct{Name: "A", IFSC: "SBIN4321", UPI: "not-a-handle"})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Fields, 3)
		assert.Equal(t, "Field Validation Failed on 'min' tag", ve.Fields["name"])
		assert.Equal(t, "must be a valid IFSC code", ve.Fields["ifsc"])
		assert.Equal(t, "must be a valid UPI ID", ve.Fields["upi"])
	})
}

func TestValidationHelper_ValidateAdjustment(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("normalises casing and drops account id for cash", func(t *testing.T) {
		req := models.AdjustmentRequest{
			Type: "Add", MoneyType: "CASH", AccountID: int64Ptr(4),
			Date: models.NewDate(2024, 5, 15), Amount: models.MustAmount("10.50"),
		}
		require.NoError(t, vh.ValidateAdjustment(&req))
		assert.Equal(t, "add", req.Type)
		assert.Equal(t, models.MoneyTypeCash, req.MoneyType)
		assert.Nil(t, req.AccountID)
	})

	t.Run("reports every missing field", func(t *testing.T) {
		err := vh.ValidateAdjustment(&models.AdjustmentRequest{})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		for _, field := range []string{"type", "money_type", "amount", "date"} {
			assert.Contains(t, ve.Fields, field)
		}
	})

	t.Run("rejects unknown direction", func(t *testing.T) {
		err := vh.ValidateAdjustment(&models.AdjustmentRequest{
			Type: "double", MoneyType: "Cash", Date: models.NewDate(2024, 5, 15), Amount: models.MustAmount("1"),
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Field Validation Failed on 'oneof' tag", ve.Fields["type"])
	})

	t.Run("rejects sub-paisa precision", func(t *testing.T) {
		err := vh.ValidateAdjustment(&models.AdjustmentRequest{
			Type: "add", MoneyType: "Cash", Date: models.NewDate(2024, 5, 15), Amount: models.MustAmount("1.234"),
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ledger.ErrTooPrecise.Error(), ve.Fields["amount"])
	})

	t.Run("rejects amounts the balance column cannot hold", func(t *testing.T) {
		err := vh.ValidateAdjustment(&models.AdjustmentRequest{
			Type: "add", MoneyType: "Cash", Date: models.NewDate(2024, 5, 15), Amount: models.MustAmount("100000000000000000000"),
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ledger.ErrAmountTooLarge.Error(), ve.Fields["amount"])
	})
}

func TestValidationHelper_ValidateTransfer(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("cash to cash is the same account", func(t *testing.T) {
		err := vh.ValidateTransfer(&models.TransferRequest{
			From: "Cash", To: "CASH", Amount: models.MustAmount("5"), Date: models.NewDate(2024, 5, 15),
		})
		assert.ErrorIs(t, err, ErrSameAccount)
	})

	t.Run("different bank accounts are allowed", func(t *testing.T) {
		err := vh.ValidateTransfer(&models.TransferRequest{
			From: "bank", FromAccountID: int64Ptr(2), To: "bank", ToAccountID: int64Ptr(3),
			Amount: models.MustAmount("5"), Date: models.NewDate(2024, 5, 15),
		})
		assert.NoError(t, err)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		err := vh.ValidateTransfer(&models.TransferRequest{
			From: "wallet", To: "cash", Amount: models.MustAmount("5"), Date: models.NewDate(2024, 5, 15),
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "from")
		assert.NotErrorIs(t, err, ErrSameAccount)
	})
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{FieldError("amount", "is required"), http.StatusBadRequest},
		{fmt.Errorf("account 3: %w", ErrAccountNotFound), http.StatusNotFound},
		{fmt.Errorf("optimistic lock failed: %w", ErrConcurrentUpdate), http.StatusConflict},
		{ErrDuplicateSubmission, http.StatusConflict},
		{&InsufficientBalanceError{AccountID: 1}, http.StatusUnprocessableEntity},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		validationErr := vh.ValidateStruct(&TestStruct{Name: "A", IFSC: "bad"})
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Error)
		assert.Contains(t, response.Details, "name")
		assert.Contains(t, response.Details, "ifsc")
	})

	t.Run("raw validator errors", func(t *testing.T) {
		raw := validator.New().Struct(&struct {
			Name string `validate:"required"`
		}{})

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, raw)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Field Validation Failed on 'required' tag", response.Details["Name"])
	})

	t.Run("unauthorized error", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Unauthorized access", http.StatusUnauthorized, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Unauthorized access", response.Error)
	})
}
