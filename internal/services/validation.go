package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bizledger/cashbank/internal/ledger"
	"github.com/bizledger/cashbank/internal/models"
)

var (
	ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	upiPattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ifscPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("upi", func(fl validator.FieldLevel) bool {
		return upiPattern.MatchString(fl.Field().String())
	})

	return &ValidationHelper{validator: v}
}

// ValidateStruct validates a struct and returns a *ValidationError keyed by
// JSON field name.
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validate(s).orNil()
}

func (vh *ValidationHelper) validate(s any) *ValidationError {
	ve := newValidationError()
	err := vh.validator.Struct(s)
	if err == nil {
		return ve
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("request", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "ifsc":
		return "must be a valid IFSC code"
	case "upi":
		return "must be a valid UPI ID"
	case "eqfield":
		return "does not match"
	}
	return fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
}

// ValidateAdjustment normalises and validates an adjustment request.
func (vh *ValidationHelper) ValidateAdjustment(req *models.AdjustmentRequest) error {
	req.Normalize()
	ve := vh.validate(req)
	checkMovementAmount(ve, "amount", req.Amount)
	if req.Date.IsZero() {
		ve.Add("date", "is required")
	}
	return ve.orNil()
}

// ValidateTransfer normalises and validates a transfer request, rejecting
// transfers whose two endpoints are the same account.
func (vh *ValidationHelper) ValidateTransfer(req *models.TransferRequest) error {
	req.Normalize()
	ve := vh.validate(req)
	checkMovementAmount(ve, "amount", req.Amount)
	if req.Date.IsZero() {
		ve.Add("date", "is required")
	}
	if !ve.Has("from") && !ve.Has("to") && req.SameEndpoint() {
		ve.Add("to", ErrSameAccount.Error())
		ve.Err = ErrSameAccount
	}
	return ve.orNil()
}

// ValidateBankAccount normalises and validates a bank account registration.
func (vh *ValidationHelper) ValidateBankAccount(req *models.CreateBankAccountRequest) error {
	req.Normalize()
	ve := vh.validate(req)
	if req.AsOfDate.IsZero() {
		ve.Add("as_of_date", "is required")
	}

	switch {
	case req.OpeningBalance.Invalid:
		ve.Add("opening_balance", "must be a number")
	case req.OpeningBalance.IsNegative():
		ve.Add("opening_balance", "must not be negative")
	case req.OpeningBalance.Set && !req.OpeningBalance.IsZero():
		if err := ledger.CheckAmount(req.OpeningBalance.Decimal); err != nil {
			ve.Add("opening_balance", err.Error())
		}
	}
	return ve.orNil()
}

func checkMovementAmount(ve *ValidationError, field string, amount models.Amount) {
	switch {
	case amount.Invalid:
		ve.Add(field, "must be a number")
	case !amount.Set:
		ve.Add(field, "is required")
	default:
		if err := ledger.CheckAmount(amount.Decimal); err != nil {
			ve.Add(field, err.Error())
		}
	}
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		var ve *ValidationError
		var fieldErrs validator.ValidationErrors
		switch {
		case errors.As(validationErr, &ve):
			errorResp.Details = ve.Fields
		case errors.As(validationErr, &fieldErrs):
			errorResp.Details = make(map[string]string)
			for _, err := range fieldErrs {
				errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
			}
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}
