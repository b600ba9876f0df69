package services

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/bizledger/cashbank/internal/ledger"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrSameAccount         = errors.New("transfer source and destination must be different accounts")
	ErrConcurrentUpdate    = errors.New("account was modified concurrently, please retry")
	ErrDuplicateSubmission = errors.New("a request with this idempotency key is already being processed")
)

// InsufficientBalanceError is raised when a debit would overdraw an account
// under the strict balance policy.
type InsufficientBalanceError = ledger.InsufficientBalanceError

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldError builds a single-field validation error.
func FieldError(field, message string) error {
	ve := newValidationError()
	ve.Add(field, message)
	return ve
}

// StatusCode maps a service error to its HTTP status.
func StatusCode(err error) int {
	var validationErr *ValidationError
	var insufficientErr *InsufficientBalanceError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConcurrentUpdate), errors.Is(err, ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.As(err, &insufficientErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
