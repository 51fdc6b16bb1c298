package apperrors

import "errors"

// Quote errors are reported per symbol. A batch fetch never fails as a whole
// because one symbol failed.
var (
	// ErrSymbolNotFound indicates that the quote source has no data for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNetwork indicates that the quote source could not be reached in time.
	ErrNetwork = errors.New("quote source unavailable")

	// ErrInsufficientHistory indicates a series with fewer than two points,
	// so no day-over-day delta can be computed.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrZeroPriorPrice guards the percent change division.
	ErrZeroPriorPrice = errors.New("prior close price is zero")

	// ErrUnorderedSeries indicates a series whose dates are not strictly ascending.
	ErrUnorderedSeries = errors.New("price series is not in chronological order")
)

// Watchlist errors.
var (
	// ErrUnknownCategory indicates a symbol was added to a category that does not exist.
	ErrUnknownCategory = errors.New("unknown watchlist category")

	// ErrInvalidCategory indicates an empty category name.
	ErrInvalidCategory = errors.New("category name is required")

	// ErrInvalidSymbol indicates an empty ticker symbol.
	ErrInvalidSymbol = errors.New("symbol is required")
)

// Configuration and session errors.
var (
	// ErrInvalidPosition indicates a configured position with a missing symbol
	// or a negative share count or average cost.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrSessionNotFound indicates a well-formed token for a session that no longer exists.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession indicates a token that failed verification or has expired.
	ErrInvalidSession = errors.New("invalid session token")

	ErrFailedToGetPortfolioSnapshot = errors.New("failed to get portfolio snapshot")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
)
