// Package watchlist keeps named, ordered, deduplicated lists of ticker symbols.
package watchlist

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
)

// Outcome reports what a mutation did. Both "already" outcomes are benign
// no-ops, not failures.
type Outcome string

const (
	Created        Outcome = "created"
	AlreadyExists  Outcome = "already_exists"
	Added          Outcome = "added"
	AlreadyPresent Outcome = "already_present"
)

// Category is a named list of symbols in insertion order.
type Category struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

// DefaultCategories seed every new store.
var DefaultCategories = []Category{
	{Name: "Tech Giants", Symbols: []string{"AAPL", "NVDA", "TSLA", "MSFT"}},
	{Name: "Taiwan Semis", Symbols: []string{"2330.TW", "2454.TW"}},
}

// Store maps category names to ordered symbol sets. Categories are never
// removed. The mutex only serializes overlapping requests from one session.
type Store struct {
	mu      sync.Mutex
	order   []string
	symbols map[string][]string
	members map[string]map[string]struct{}
}

// New creates a store seeded with the given categories.
func New(seed []Category) *Store {
	s := &Store{
		symbols: make(map[string][]string),
		members: make(map[string]map[string]struct{}),
	}
	for _, c := range seed {
		name, err := normalizeCategory(c.Name)
		if err != nil {
			continue
		}
		s.addCategory(name)
		for _, sym := range c.Symbols {
			if n := normalizeSymbol(sym); n != "" {
				s.addSymbol(name, n)
			}
		}
	}
	return s
}

// NewDefault creates a store seeded with DefaultCategories.
func NewDefault() *Store {
	return New(DefaultCategories)
}

// AddCategory creates an empty category. Adding an existing name is a no-op
// that reports AlreadyExists.
func (s *Store) AddCategory(name string) (Outcome, error) {
	name, err := normalizeCategory(name)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCategory(name), nil
}

// AddSymbol appends symbol, uppercased, to category. A symbol already in the
// category is left where it is and AlreadyPresent is reported.
func (s *Store) AddSymbol(category, symbol string) (Outcome, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return "", err
	}
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return "", apperrors.ErrInvalidSymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[category]; !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownCategory, category)
	}
	return s.addSymbol(category, sym), nil
}

// AddCategoryWithSymbol creates category if needed and adds symbol to it in
// one step. Inputs are validated before anything is mutated.
func (s *Store) AddCategoryWithSymbol(category, symbol string) (Outcome, Outcome, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return "", "", err
	}
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return "", "", apperrors.ErrInvalidSymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCategory(category), s.addSymbol(category, sym), nil
}

// ListCategories returns category names in creation order.
func (s *Store) ListCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Symbols returns a copy of the symbols in category.
func (s *Store) Symbols(category string) ([]string, error) {
	name := strings.TrimSpace(category)
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCategory, name)
	}
	return slices.Clone(list), nil
}

// Snapshot returns every category with its symbols, in creation order.
func (s *Store) Snapshot() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Category, len(s.order))
	for i, name := range s.order {
		out[i] = Category{Name: name, Symbols: slices.Clone(s.symbols[name])}
	}
	return out
}

func (s *Store) addCategory(name string) Outcome {
	if _, ok := s.members[name]; ok {
		return AlreadyExists
	}
	s.order = append(s.order, name)
	s.symbols[name] = []string{}
	s.members[name] = make(map[string]struct{})
	return Created
}

func (s *Store) addSymbol(category, sym string) Outcome {
	if _, ok := s.members[category][sym]; ok {
		return AlreadyPresent
	}
	s.members[category][sym] = struct{}{}
	s.symbols[category] = append(s.symbols[category], sym)
	return Added
}

func normalizeCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ErrInvalidCategory
	}
	return name, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
