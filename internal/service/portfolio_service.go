package service

import (
	"context"
	"fmt"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/quote"
)

// PositionLister supplies the configured positions.
type PositionLister interface {
	ListPositions(ctx context.Context) ([]model.Position, error)
}

// PortfolioService handles portfolio-related business logic operations.
// It loads the configured positions, fetches their quotes in one batch and
// hands both to the pure engine functions in portfolio_metrics.go.
type PortfolioService struct {
	positions PositionLister
	fetcher   *quote.Fetcher
	lookback  model.Lookback
}

// NewPortfolioService creates a new PortfolioService.
//
// Parameters:
//   - positions: source of the configured holdings
//   - fetcher: quote fetcher shared with the watchlist
//   - lookback: chart range used for snapshots and history
func NewPortfolioService(positions PositionLister, fetcher *quote.Fetcher, lookback model.Lookback) *PortfolioService {
	if !lookback.Valid() {
		lookback = model.LookbackOneMonth
	}
	return &PortfolioService{
		positions: positions,
		fetcher:   fetcher,
		lookback:  lookback,
	}
}

// Positions retrieves the configured holdings with their symbols normalized.
func (s *PortfolioService) Positions(ctx context.Context) ([]model.Position, error) {
	positions, err := s.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePositions, err)
	}
	for i := range positions {
		positions[i].Symbol = s.fetcher.Normalize(positions[i].Symbol)
	}
	return positions, nil
}

// Snapshot values every position and the portfolio as a whole.
//
// Quote failures do not fail the call: they surface per position in the
// returned snapshot. Only a failure to read the positions themselves is
// returned as an error.
func (s *PortfolioService) Snapshot(ctx context.Context) (model.PortfolioSnapshot, error) {
	positions, batch, err := s.load(ctx)
	if err != nil {
		return model.PortfolioSnapshot{}, err
	}

	snapshot := ComputePortfolio(positions, batch.Series, batch.Errors)
	snapshot.ComputedAt = batch.FetchedAt
	return snapshot, nil
}

// History returns the portfolio value per trading day over the lookback.
// Positions whose quotes failed are left out.
func (s *PortfolioService) History(ctx context.Context) ([]model.ValuePoint, error) {
	positions, batch, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeHistory(positions, batch.Series), nil
}

func (s *PortfolioService) load(ctx context.Context) ([]model.Position, quote.Batch, error) {
	positions, err := s.Positions(ctx)
	if err != nil {
		return nil, quote.Batch{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetPortfolioSnapshot, err)
	}

	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	return positions, s.fetcher.Fetch(ctx, symbols, s.lookback), nil
}
