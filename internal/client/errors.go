package client

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoToken is returned when the AuthProvider has no token to offer.
var ErrNoToken = errors.New("no auth token available")

// AuthError is returned when no token is available or the server rejects it.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return "unauthorized: " + e.Message }

// ValidationError carries the per-field messages of a 400 response.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return e.Message + ": " + strings.Join(parts, ", ")
}

// BackendError is any other non-2xx response.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// NetworkError wraps transport failures. The request may or may not have
// reached the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }
