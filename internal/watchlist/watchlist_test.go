package watchlist_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/watchlist"
)

func TestNewDefault(t *testing.T) {
	s := watchlist.NewDefault()

	got := s.ListCategories()
	want := []string{"Tech Giants", "Taiwan Semis"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected default categories %v, got %v", want, got)
	}

	semis, err := s.Symbols("Taiwan Semis")
	if err != nil {
		t.Fatalf("Symbols() returned unexpected error: %v", err)
	}
	if !slices.Equal(semis, []string{"2330.TW", "2454.TW"}) {
		t.Errorf("Unexpected Taiwan Semis symbols: %v", semis)
	}
}

func TestStore_AddCategory(t *testing.T) {
	t.Run("adds High Yield and accepts a symbol", func(t *testing.T) {
		s := watchlist.NewDefault()

		outcome, err := s.AddCategory("High Yield")
		if err != nil || outcome != watchlist.Created {
			t.Fatalf("AddCategory() = %q, %v", outcome, err)
		}
		if outcome, err := s.AddSymbol("High Yield", "O"); err != nil || outcome != watchlist.Added {
			t.Fatalf("AddSymbol() = %q, %v", outcome, err)
		}

		if !slices.Contains(s.ListCategories(), "High Yield") {
			t.Errorf("Expected High Yield in %v", s.ListCategories())
		}
		symbols, _ := s.Symbols("High Yield")
		if !slices.Equal(symbols, []string{"O"}) {
			t.Errorf("Expected [O], got %v", symbols)
		}
	})

	t.Run("existing name is a no-op", func(t *testing.T) {
		s := watchlist.NewDefault()
		s.AddSymbol("Tech Giants", "AMD") //nolint:errcheck // setup

		outcome, err := s.AddCategory("Tech Giants")
		if err != nil {
			t.Fatalf("AddCategory() returned unexpected error: %v", err)
		}
		if outcome != watchlist.AlreadyExists {
			t.Errorf("Expected AlreadyExists, got %q", outcome)
		}
		symbols, _ := s.Symbols("Tech Giants")
		if !slices.Contains(symbols, "AMD") {
			t.Error("Expected existing symbols to be kept")
		}
		if len(s.ListCategories()) != 2 {
			t.Errorf("Expected 2 categories, got %d", len(s.ListCategories()))
		}
	})

	t.Run("preserves creation order", func(t *testing.T) {
		s := watchlist.New(nil)
		for _, name := range []string{"b", "a", "c", "a"} {
			s.AddCategory(name) //nolint:errcheck // setup
		}
		if got := s.ListCategories(); !slices.Equal(got, []string{"b", "a", "c"}) {
			t.Errorf("Unexpected order: %v", got)
		}
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		s := watchlist.New(nil)
		if _, err := s.AddCategory("   "); !errors.Is(err, apperrors.ErrInvalidCategory) {
			t.Errorf("Expected ErrInvalidCategory, got %v", err)
		}
	})
}

func TestStore_AddSymbol(t *testing.T) {
	t.Run("adding twice equals adding once", func(t *testing.T) {
		s := watchlist.New([]watchlist.Category{{Name: "EV", Symbols: []string{"RIVN"}}})

		s.AddSymbol("EV", "TSLA") //nolint:errcheck // setup
		once, _ := s.Symbols("EV")
		outcome, err := s.AddSymbol("EV", "TSLA")
		twice, _ := s.Symbols("EV")

		if err != nil || outcome != watchlist.AlreadyPresent {
			t.Errorf("AddSymbol() = %q, %v", outcome, err)
		}
		if !slices.Equal(once, twice) {
			t.Errorf("Expected %v, got %v", once, twice)
		}
	})

	t.Run("is case-insensitive", func(t *testing.T) {
		s := watchlist.New([]watchlist.Category{{Name: "EV"}})

		first, _ := s.AddSymbol("EV", "tsla")
		second, _ := s.AddSymbol("EV", "TSLA")

		if first != watchlist.Added || second != watchlist.AlreadyPresent {
			t.Errorf("Expected added then already present, got %q then %q", first, second)
		}
		symbols, _ := s.Symbols("EV")
		if !slices.Equal(symbols, []string{"TSLA"}) {
			t.Errorf("Expected [TSLA], got %v", symbols)
		}
	})

	t.Run("duplicates do not reorder", func(t *testing.T) {
		s := watchlist.New([]watchlist.Category{{Name: "EV", Symbols: []string{"A", "B", "C"}}})

		s.AddSymbol("EV", "a") //nolint:errcheck // setup

		symbols, _ := s.Symbols("EV")
		if !slices.Equal(symbols, []string{"A", "B", "C"}) {
			t.Errorf("Expected [A B C], got %v", symbols)
		}
	})

	t.Run("unknown category fails without mutation", func(t *testing.T) {
		s := watchlist.NewDefault()
		before := s.Snapshot()

		_, err := s.AddSymbol("Nope", "TSLA")
		if !errors.Is(err, apperrors.ErrUnknownCategory) {
			t.Errorf("Expected ErrUnknownCategory, got %v", err)
		}
		if len(s.Snapshot()) != len(before) {
			t.Error("Expected no new category")
		}
	})

	t.Run("blank symbol is rejected", func(t *testing.T) {
		s := watchlist.NewDefault()
		if _, err := s.AddSymbol("Tech Giants", " "); !errors.Is(err, apperrors.ErrInvalidSymbol) {
			t.Errorf("Expected ErrInvalidSymbol, got %v", err)
		}
	})
}

func TestStore_AddCategoryWithSymbol(t *testing.T) {
	s := watchlist.New(nil)

	catOutcome, symOutcome, err := s.AddCategoryWithSymbol("High Yield", "o")
	if err != nil {
		t.Fatalf("AddCategoryWithSymbol() returned unexpected error: %v", err)
	}
	if catOutcome != watchlist.Created || symOutcome != watchlist.Added {
		t.Errorf("Unexpected outcomes %q, %q", catOutcome, symOutcome)
	}

	catOutcome, symOutcome, _ = s.AddCategoryWithSymbol("High Yield", "O")
	if catOutcome != watchlist.AlreadyExists || symOutcome != watchlist.AlreadyPresent {
		t.Errorf("Unexpected outcomes on repeat %q, %q", catOutcome, symOutcome)
	}

	if _, _, err := s.AddCategoryWithSymbol("Empty", ""); !errors.Is(err, apperrors.ErrInvalidSymbol) {
		t.Errorf("Expected ErrInvalidSymbol, got %v", err)
	}
	if slices.Contains(s.ListCategories(), "Empty") {
		t.Error("Expected no category to be created on invalid input")
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := watchlist.NewDefault()

	snap := s.Snapshot()
	snap[0].Symbols[0] = "CHANGED"

	symbols, _ := s.Symbols("Tech Giants")
	if symbols[0] != "AAPL" {
		t.Errorf("Expected store to be unaffected, got %v", symbols)
	}
}
