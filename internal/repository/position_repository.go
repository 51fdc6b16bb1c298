package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/model"
)

// PositionRepository provides read access to the operator-configured position table.
// Share counts and average costs are stored as decimal TEXT so no precision is lost.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// ListPositions retrieves all positions in display order.
// Returns an empty slice if no positions are configured.
// A row holding an unparsable or invalid number fails the whole call,
// since a silently dropped holding would understate the portfolio.
func (r *PositionRepository) ListPositions(ctx context.Context) ([]model.Position, error) {
	query := `
          SELECT symbol, name, shares, avg_cost
          FROM position
          ORDER BY sort_order, symbol
      `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}

	for rows.Next() {
		var symbol, name, shares, avgCost string

		if err := rows.Scan(&symbol, &name, &shares, &avgCost); err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		p, err := parsePosition(symbol, name, shares, avgCost)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

func parsePosition(symbol, name, shares, avgCost string) (model.Position, error) {
	s, err := decimal.NewFromString(shares)
	if err != nil {
		return model.Position{}, fmt.Errorf("invalid shares %q for %s: %w", shares, symbol, err)
	}
	c, err := decimal.NewFromString(avgCost)
	if err != nil {
		return model.Position{}, fmt.Errorf("invalid avg_cost %q for %s: %w", avgCost, symbol, err)
	}
	return model.NewPosition(symbol, name, s, c)
}
