package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
)

// Position is an operator-configured holding. It is read once per refresh and
// never mutated while a snapshot is being computed.
type Position struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Shares  decimal.Decimal `json:"shares"`
	AvgCost decimal.Decimal `json:"avgCost"`
}

// NewPosition builds a validated Position.
func NewPosition(symbol, name string, shares, avgCost decimal.Decimal) (Position, error) {
	p := Position{
		Symbol:  strings.ToUpper(strings.TrimSpace(symbol)),
		Name:    strings.TrimSpace(name),
		Shares:  shares,
		AvgCost: avgCost,
	}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}

// Validate checks the required fields of a position.
func (p Position) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidPosition)
	}
	if p.Shares.IsNegative() {
		return fmt.Errorf("%w: %s shares cannot be negative", apperrors.ErrInvalidPosition, p.Symbol)
	}
	if p.AvgCost.IsNegative() {
		return fmt.Errorf("%w: %s average cost cannot be negative", apperrors.ErrInvalidPosition, p.Symbol)
	}
	return nil
}

// CostBasis is the amount paid for the position.
func (p Position) CostBasis() decimal.Decimal {
	return p.Shares.Mul(p.AvgCost)
}
