package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/api/request"
	"github.com/alphapocket/pocket-backend/internal/api/response"
	"github.com/alphapocket/pocket-backend/internal/display"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/service"
	"github.com/alphapocket/pocket-backend/internal/validation"
	"github.com/alphapocket/pocket-backend/internal/watchlist"
)

// WatchlistHandler handles HTTP requests for the session's watchlist and for
// symbol search. The watchlist routes must sit behind the session middleware.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler with the provided service dependency.
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// CategoryOutcomeResponse reports the result of creating a category.
type CategoryOutcomeResponse struct {
	Name    string            `json:"name"`
	Outcome watchlist.Outcome `json:"outcome"`
}

// QuoteResponse is the latest quote for one symbol. Exactly one of the price
// fields and Error is populated, depending on Status.
type QuoteResponse struct {
	Symbol     string           `json:"symbol"`
	Name       string           `json:"name,omitempty"`
	Status     string           `json:"status"`
	ErrorCode  string           `json:"errorCode,omitempty"`
	Error      string           `json:"error,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	Price      *Amount          `json:"price,omitempty"`
	PriorPrice *Amount          `json:"priorPrice,omitempty"`
	Change     *Amount          `json:"change,omitempty"`
	ChangePct  *decimal.Decimal `json:"changePct,omitempty"`
	Direction  string           `json:"direction,omitempty"`
	AsOf       string           `json:"asOf,omitempty"`
}

// CategoryQuotesResponse holds the quotes for one category in list order.
type CategoryQuotesResponse struct {
	Category string          `json:"category"`
	Quotes   []QuoteResponse `json:"quotes"`
}

// Categories handles GET requests for every category with its symbols.
//
// Endpoint: GET /api/watchlist
// Response: 200 OK with array of watchlist.Category in creation order
func (h *WatchlistHandler) Categories(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		response.RespondError(w, http.StatusInternalServerError, "no session", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.watchlistService.Categories(sess))
}

// CreateCategory handles POST requests to add a category. Creating an existing
// category is not an error; the outcome says which case occurred.
//
// Endpoint: POST /api/watchlist/category
// Request Body: CreateCategoryRequest (name)
// Response: 201 Created when created, 200 OK when it already existed
// Error: 400 Bad Request if validation fails or request body is invalid
func (h *WatchlistHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		response.RespondError(w, http.StatusInternalServerError, "no session", nil)
		return
	}

	req, err := parseJSON[request.CreateCategoryRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateCategory(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	outcome, err := h.watchlistService.AddCategory(r.Context(), sess, req.Name)
	if err != nil {
		response.RespondServiceError(w, "failed to create category", err)
		return
	}

	status := http.StatusOK
	if outcome == watchlist.Created {
		status = http.StatusCreated
	}
	response.RespondJSON(w, status, CategoryOutcomeResponse{Name: strings.TrimSpace(req.Name), Outcome: outcome})
}

// AddSymbol handles POST requests to add a symbol to a category. Four digit
// codes are normalized to their exchange form before they are stored.
//
// Endpoint: POST /api/watchlist/symbol
// Request Body: AddSymbolRequest (category, symbol, create)
// Response: 201 Created when added, 200 OK when it was already present
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the category does not exist and create is false
func (h *WatchlistHandler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		response.RespondError(w, http.StatusInternalServerError, "no session", nil)
		return
	}

	req, err := parseJSON[request.AddSymbolRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAddSymbol(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.watchlistService.AddSymbol(r.Context(), sess, req.Category, req.Symbol, req.Create)
	if err != nil {
		response.RespondServiceError(w, "failed to add symbol", err)
		return
	}

	status := http.StatusOK
	if result.SymbolOutcome == watchlist.Added {
		status = http.StatusCreated
	}
	response.RespondJSON(w, status, result)
}

// Quotes handles GET requests for the latest quotes of one category.
// Symbols that could not be quoted are returned with an error status.
//
// Endpoint: GET /api/watchlist/quotes?category={name}
// Response: 200 OK with CategoryQuotesResponse
// Error: 400 Bad Request if category is missing or blank
// Error: 404 Not Found if the category does not exist
func (h *WatchlistHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		response.RespondError(w, http.StatusInternalServerError, "no session", nil)
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		response.RespondError(w, http.StatusBadRequest, "category is required", nil)
		return
	}

	rows, err := h.watchlistService.Quotes(r.Context(), sess, category)
	if err != nil {
		response.RespondServiceError(w, "failed to get quotes", err)
		return
	}

	resp := CategoryQuotesResponse{Category: category, Quotes: make([]QuoteResponse, len(rows))}
	for i, row := range rows {
		resp.Quotes[i] = quoteRow(row)
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Search handles GET requests to look up a single symbol.
//
// Endpoint: GET /api/quote/search?q={symbol}
// Response: 200 OK with QuoteResponse
// Error: 400 Bad Request if q is blank
// Error: 404 Not Found if the symbol is unknown
// Error: 422 Unprocessable Entity if the symbol has too little history to price
// Error: 502 Bad Gateway if the quote source is unreachable
func (h *WatchlistHandler) Search(w http.ResponseWriter, r *http.Request) {
	row, err := h.watchlistService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.RespondServiceError(w, "failed to look up symbol", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, quoteRow(row))
}

func quoteRow(row model.PositionResult) QuoteResponse {
	out := QuoteResponse{Symbol: row.Symbol, Name: row.Name}
	if !row.OK() {
		out.Status = "error"
		out.ErrorCode = response.ErrorCode(row.Err)
		out.Error = row.Err.Error()
		return out
	}

	s := row.Snapshot
	price := newAmount(s.CurrentPrice, s.Currency)
	prior := newAmount(s.PriorPrice, s.Currency)
	change := newAmount(s.ChangeAmount, s.Currency)
	pct := s.ChangePct

	out.Status = "ok"
	out.Currency = s.Currency
	out.Price = &price
	out.PriorPrice = &prior
	out.Change = &change
	out.ChangePct = &pct
	out.Direction = display.Direction(s.ChangeAmount)
	out.AsOf = s.AsOf.Format(time.DateOnly)
	return out
}
