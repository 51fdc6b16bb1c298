package cli

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/repository"
	"github.com/alphapocket/pocket-backend/internal/service"
)

// snapshotCmd holds the flags for the 'snapshot' subcommand.
type snapshotCmd struct {
	currency string
	lookback string
	watch    int
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "display the current portfolio valuation" }
func (*snapshotCmd) Usage() string {
	return `pocketctl snapshot [-c <currency>] [-l <lookback>] [-w n]

  Prices every configured position and displays totals and daily P&L.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "USD", "Currency used to display totals")
	f.StringVar(&c.lookback, "l", string(model.LookbackOneMonth), "Chart range requested for each symbol")
	f.IntVar(&c.watch, "w", 0, "refresh every n seconds")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	lookback := model.Lookback(c.lookback)
	if !lookback.Valid() {
		return fail("invalid lookback %q", c.lookback)
	}

	db, err := OpenDatabase(ctx)
	if err != nil {
		return fail("opening database: %v", err)
	}
	defer db.Close()

	svc := service.NewPortfolioService(repository.NewPositionRepository(db), NewFetcher(), lookback)

	for {
		snap, err := svc.Snapshot(ctx)
		if err != nil {
			if c.watch == 0 {
				return fail("computing snapshot: %v", err)
			}
			failPrint("computing snapshot: %v", err)
		} else {
			if c.watch > 0 {
				clearScreen()
			}
			printMarkdown(SnapshotMarkdown(snap, c.currency))
		}

		if c.watch <= 0 {
			return subcommands.ExitSuccess
		}
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-time.After(time.Duration(c.watch) * time.Second):
		}
	}
}

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	currency string
	lookback string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily portfolio value" }
func (*historyCmd) Usage() string {
	return `pocketctl history [-c <currency>] [-l <lookback>]

  Displays the value of the current holdings on each trading day of the range.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "USD", "Currency used to display values")
	f.StringVar(&c.lookback, "l", string(model.LookbackOneMonth), "Chart range requested for each symbol")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	lookback := model.Lookback(c.lookback)
	if !lookback.Valid() {
		return fail("invalid lookback %q", c.lookback)
	}

	db, err := OpenDatabase(ctx)
	if err != nil {
		return fail("opening database: %v", err)
	}
	defer db.Close()

	svc := service.NewPortfolioService(repository.NewPositionRepository(db), NewFetcher(), lookback)
	points, err := svc.History(ctx)
	if err != nil {
		return fail("computing history: %v", err)
	}
	printMarkdown(HistoryMarkdown(points, c.currency))
	return subcommands.ExitSuccess
}
