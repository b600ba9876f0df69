package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bizledger/cashbank/internal/logging"
	mw "github.com/bizledger/cashbank/internal/middleware"
	"github.com/bizledger/cashbank/internal/services"
)

const (
	maxBodyBytes         = 1_048_576
	idempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

// bodyError messages are returned to the caller verbatim.
type bodyError string

func (e bodyError) Error() string { return string(e) }

const (
	errInvalidBody    bodyError = "Invalid request body"
	errMultipleBodies bodyError = "Request body must only contain a single JSON object"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errInvalidBody
	}
	return body, nil
}

// decodeStrict decodes exactly one JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeStrict(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errMultipleBodies
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := readBody(w, r)
	if err == nil {
		err = decodeStrict(body, dst)
	}
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto the shared error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.StatusCode(err)

	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		services.SendErrorResponse(w, "Validation failed", status, validationErr)
	case status == http.StatusInternalServerError:
		logging.FromContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).Error("Request failed")
		services.SendErrorResponse(w, "Internal server error", status, nil)
	default:
		services.SendErrorResponse(w, err.Error(), status, nil)
	}
}

func businessID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := mw.BusinessIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return "", false
	}
	return id, true
}

func idempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get(idempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLen {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest,
			services.FieldError(idempotencyKeyHeader, "must be at most 128 characters"))
		return "", false
	}
	return key, true
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid account ID", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}

func createdStatus(replayed bool) int {
	if replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}
