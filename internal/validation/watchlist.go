package validation

import (
	"github.com/alphapocket/pocket-backend/internal/api/request"
)

func ValidateCreateCategory(req request.CreateCategoryRequest) error {
	errors := make(map[string]string)
	checkText(errors, "name", req.Name, MaxCategoryLength)
	return errorOrNil(errors)
}

func ValidateAddSymbol(req request.AddSymbolRequest) error {
	errors := make(map[string]string)
	checkText(errors, "category", req.Category, MaxCategoryLength)
	checkText(errors, "symbol", req.Symbol, MaxSymbolLength)
	return errorOrNil(errors)
}
