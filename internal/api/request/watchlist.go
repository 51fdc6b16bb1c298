package request

// CreateCategoryRequest represents the request body for creating a watchlist category
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// AddSymbolRequest represents the request body for adding a symbol to a category.
// Create asks for the category to be created when it does not exist yet.
type AddSymbolRequest struct {
	Category string `json:"category"`
	Symbol   string `json:"symbol"`
	Create   bool   `json:"create"`
}
