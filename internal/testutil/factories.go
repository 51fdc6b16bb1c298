package testutil

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/model"
)

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	// Simple creation with defaults
//	position := testutil.NewPosition().Build(t, db)
//
//	// Customized position
//	position := testutil.NewPosition().
//	    WithSymbol("TSLA").
//	    WithShares(50).
//	    WithAvgCost(210).
//	    Build(t, db)
type PositionBuilder struct {
	Symbol    string
	Name      string
	Shares    decimal.Decimal
	AvgCost   decimal.Decimal
	SortOrder int
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition() *PositionBuilder {
	return &PositionBuilder{
		Symbol:  "TEST",
		Name:    "Test Holding",
		Shares:  decimal.NewFromInt(10),
		AvgCost: decimal.NewFromInt(100),
	}
}

// WithSymbol sets the ticker symbol.
func (b *PositionBuilder) WithSymbol(symbol string) *PositionBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets the display name.
func (b *PositionBuilder) WithName(name string) *PositionBuilder {
	b.Name = name
	return b
}

// WithShares sets the share count.
func (b *PositionBuilder) WithShares(shares float64) *PositionBuilder {
	b.Shares = decimal.NewFromFloat(shares)
	return b
}

// WithAvgCost sets the average cost per share.
func (b *PositionBuilder) WithAvgCost(cost float64) *PositionBuilder {
	b.AvgCost = decimal.NewFromFloat(cost)
	return b
}

// WithSortOrder sets the display position.
func (b *PositionBuilder) WithSortOrder(order int) *PositionBuilder {
	b.SortOrder = order
	return b
}

// Model returns the position without touching the database.
func (b *PositionBuilder) Model() model.Position {
	return model.Position{
		Symbol:  b.Symbol,
		Name:    b.Name,
		Shares:  b.Shares,
		AvgCost: b.AvgCost,
	}
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO position (symbol, name, shares, avg_cost, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.Symbol, b.Name, b.Shares.String(), b.AvgCost.String(), b.SortOrder)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return b.Model()
}

// Convenience functions

// CreatePosition creates a position with the given symbol, shares and average cost.
//
// Example usage:
//
//	position := testutil.CreatePosition(t, db, "TSLA", 50, 210)
func CreatePosition(t *testing.T, db *sql.DB, symbol string, shares, avgCost float64) model.Position {
	t.Helper()
	return NewPosition().
		WithSymbol(symbol).
		WithName("").
		WithShares(shares).
		WithAvgCost(avgCost).
		Build(t, db)
}

// InsertRawPosition writes a row without validation, for testing how bad data is handled.
func InsertRawPosition(t *testing.T, db *sql.DB, symbol, shares, avgCost string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO position (symbol, name, shares, avg_cost, sort_order) VALUES (?, '', ?, ?, 0)",
		symbol, shares, avgCost,
	)
	if err != nil {
		t.Fatalf("Failed to insert raw position: %v", err)
	}
}
