// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses, standardized error responses and
// the mapping from domain errors to HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/validation"
)

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
// The details parameter can be an error string, additional context, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "resource not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}

// RespondServiceError maps err to a status with StatusFor and sends it with
// message as the error and err as the details.
func RespondServiceError(w http.ResponseWriter, message string, err error) {
	RespondError(w, StatusFor(err), message, err.Error())
}

// StatusFor returns the HTTP status for a service error.
//
//   - validation failures, blank names and symbols: 400
//   - unknown category, unknown symbol: 404
//   - a series that cannot be priced: 422
//   - the quote source is unreachable: 502
//   - anything else: 500
func StatusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr),
		errors.Is(err, apperrors.ErrInvalidCategory),
		errors.Is(err, apperrors.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnknownCategory),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInsufficientHistory),
		errors.Is(err, apperrors.ErrZeroPriorPrice),
		errors.Is(err, apperrors.ErrUnorderedSeries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine-readable code for a per-row error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperrors.ErrSymbolNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrNetwork):
		return "network_error"
	case errors.Is(err, apperrors.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, apperrors.ErrZeroPriorPrice):
		return "zero_prior_price"
	case errors.Is(err, apperrors.ErrUnorderedSeries):
		return "unordered_series"
	default:
		return "error"
	}
}
