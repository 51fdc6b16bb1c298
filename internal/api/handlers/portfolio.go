package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/api/response"
	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/display"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
// It serves as the HTTP layer adapter, delegating valuation to the portfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	baseCurrency     string
}

// NewPortfolioHandler creates a new PortfolioHandler. Totals are displayed in baseCurrency.
func NewPortfolioHandler(portfolioService *service.PortfolioService, baseCurrency string) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		baseCurrency:     baseCurrency,
	}
}

// PositionResponse is one configured holding.
type PositionResponse struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Shares    decimal.Decimal `json:"shares"`
	AvgCost   decimal.Decimal `json:"avgCost"`
	CostBasis decimal.Decimal `json:"costBasis"`
}

// Positions handles GET requests for the configured holdings.
//
// Endpoint: GET /api/portfolio/positions
// Response: 200 OK with array of PositionResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolioService.Positions(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	resp := make([]PositionResponse, len(positions))
	for i, p := range positions {
		resp[i] = PositionResponse{
			Symbol:    p.Symbol,
			Name:      p.Name,
			Shares:    p.Shares,
			AvgCost:   p.AvgCost,
			CostBasis: p.CostBasis(),
		}
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// PositionSnapshotResponse is a priced holding.
type PositionSnapshotResponse struct {
	Currency          string          `json:"currency"`
	Shares            decimal.Decimal `json:"shares"`
	CurrentPrice      Amount          `json:"currentPrice"`
	PriorPrice        Amount          `json:"priorPrice"`
	Value             Amount          `json:"value"`
	PriorValue        Amount          `json:"priorValue"`
	ChangeAmount      Amount          `json:"changeAmount"`
	ChangePct         decimal.Decimal `json:"changePct"`
	Direction         string          `json:"direction"`
	CostBasis         Amount          `json:"costBasis"`
	UnrealizedGain    Amount          `json:"unrealizedGain"`
	UnrealizedGainPct decimal.Decimal `json:"unrealizedGainPct"`
	AsOf              string          `json:"asOf"`
}

// PositionRowResponse is one row of the snapshot. Exactly one of Snapshot and
// Error is set.
type PositionRowResponse struct {
	Symbol    string                    `json:"symbol"`
	Name      string                    `json:"name"`
	Status    string                    `json:"status"`
	ErrorCode string                    `json:"errorCode,omitempty"`
	Error     string                    `json:"error,omitempty"`
	Snapshot  *PositionSnapshotResponse `json:"snapshot,omitempty"`
}

// PortfolioSnapshotResponse is the dashboard header plus its rows.
type PortfolioSnapshotResponse struct {
	Currency        string                `json:"currency"`
	TotalValue      Amount                `json:"totalValue"`
	TotalPriorValue Amount                `json:"totalPriorValue"`
	DailyPnL        Amount                `json:"dailyPnl"`
	DailyPnLPct     decimal.Decimal       `json:"dailyPnlPct"`
	PctUndefined    bool                  `json:"pctUndefined"`
	Direction       string                `json:"direction"`
	Resolved        int                   `json:"resolved"`
	Failed          int                   `json:"failed"`
	ComputedAt      time.Time             `json:"computedAt"`
	Positions       []PositionRowResponse `json:"positions"`
}

// Snapshot handles GET requests for the current portfolio valuation.
// Positions whose quotes failed are returned with an error and left out of the totals.
//
// Endpoint: GET /api/portfolio/snapshot
// Response: 200 OK with PortfolioSnapshotResponse
// Error: 500 Internal Server Error if the positions cannot be loaded
func (h *PortfolioHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolioService.Snapshot(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetPortfolioSnapshot.Error(), err.Error())
		return
	}

	resp := PortfolioSnapshotResponse{
		Currency:        h.baseCurrency,
		TotalValue:      newAmount(snap.TotalValue, h.baseCurrency),
		TotalPriorValue: newAmount(snap.TotalPriorValue, h.baseCurrency),
		DailyPnL:        newAmount(snap.DailyPnL, h.baseCurrency),
		DailyPnLPct:     snap.DailyPnLPct,
		PctUndefined:    snap.PctUndefined,
		Direction:       display.Direction(snap.DailyPnL),
		Resolved:        snap.Resolved,
		Failed:          snap.Failed,
		ComputedAt:      snap.ComputedAt,
		Positions:       make([]PositionRowResponse, len(snap.Positions)),
	}
	for i, row := range snap.Positions {
		resp.Positions[i] = positionRow(row)
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// ValuePointResponse is one point of the balance chart.
type ValuePointResponse struct {
	Date  string `json:"date"`
	Value Amount `json:"value"`
}

// History handles GET requests for the portfolio balance over the configured lookback.
//
// Endpoint: GET /api/portfolio/history
// Response: 200 OK with array of ValuePointResponse, oldest first
// Error: 500 Internal Server Error if the positions cannot be loaded
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.portfolioService.History(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to get portfolio history", err.Error())
		return
	}

	resp := make([]ValuePointResponse, len(history))
	for i, p := range history {
		resp[i] = ValuePointResponse{
			Date:  p.Date.Format(time.DateOnly),
			Value: newAmount(p.Value, h.baseCurrency),
		}
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

func positionRow(row model.PositionResult) PositionRowResponse {
	out := PositionRowResponse{Symbol: row.Symbol, Name: row.Name}
	if !row.OK() {
		out.Status = "error"
		out.ErrorCode = response.ErrorCode(row.Err)
		out.Error = row.Err.Error()
		return out
	}

	s := row.Snapshot
	out.Status = "ok"
	out.Snapshot = &PositionSnapshotResponse{
		Currency:          s.Currency,
		Shares:            s.Shares,
		CurrentPrice:      newAmount(s.CurrentPrice, s.Currency),
		PriorPrice:        newAmount(s.PriorPrice, s.Currency),
		Value:             newAmount(s.Value, s.Currency),
		PriorValue:        newAmount(s.PriorValue, s.Currency),
		ChangeAmount:      newAmount(s.ChangeAmount, s.Currency),
		ChangePct:         s.ChangePct,
		Direction:         display.Direction(s.ChangeAmount),
		CostBasis:         newAmount(s.CostBasis, s.Currency),
		UnrealizedGain:    newAmount(s.UnrealizedGain, s.Currency),
		UnrealizedGainPct: s.UnrealizedGainPct,
		AsOf:              s.AsOf.Format(time.DateOnly),
	}
	return out
}
