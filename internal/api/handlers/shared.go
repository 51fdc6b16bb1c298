package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/display"
	"github.com/alphapocket/pocket-backend/internal/session"
)

const maxBodyBytes = 1 << 16

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	return req, nil
}

// sessionFrom returns the session attached by the session middleware.
func sessionFrom(r *http.Request) (*session.Session, bool) {
	return session.FromContext(r.Context())
}

// Amount is a monetary value with a human-readable rendering.
type Amount struct {
	Value   decimal.Decimal `json:"value"`
	Display string          `json:"display"`
}

func newAmount(value decimal.Decimal, currency string) Amount {
	return Amount{Value: value, Display: display.Money(value, currency)}
}
