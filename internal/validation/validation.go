package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Field length limits.
const (
	MaxCategoryLength = 50
	MaxSymbolLength   = 20
)

// Error collects per-field validation messages.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func errorOrNil(fields map[string]string) error {
	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}

// checkText validates a required, length-bounded text field.
func checkText(fields map[string]string, field, value string, limit int) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		fields[field] = field + " is required"
	case len(value) > limit:
		fields[field] = fmt.Sprintf("%s must be %d characters or less", field, limit)
	}
}
