// Package cli implements the pocketctl subcommands: a terminal view of the
// portfolio snapshot, ad-hoc quotes and symbol normalization.
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/alphapocket/pocket-backend/internal/database"
	"github.com/alphapocket/pocket-backend/internal/quote"
	"github.com/alphapocket/pocket-backend/internal/yahoo"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&snapshotCmd{}, "portfolio")
	c.Register(&historyCmd{}, "portfolio")

	c.Register(&quoteCmd{}, "quotes")
	c.Register(&normalizeCmd{}, "quotes")
}

var dbPath = flag.String("db", envOr("DB_PATH", "./data/pocket.db"), "Path to the positions database")
var yahooURL = flag.String("yahoo-url", envOr("YAHOO_BASE_URL", yahoo.DefaultBaseURL), "Base URL of the chart API")
var timeout = flag.Duration("timeout", 10*time.Second, "Time limit for one batch of quotes")
var plain = flag.Bool("plain", false, "print raw markdown instead of rendering it")
var numericSuffix = flag.String("suffix", envOr("QUOTE_NUMERIC_SUFFIX", yahoo.DefaultNumericSuffix), "Exchange suffix appended to four digit codes")

// stdout receives command output.
var stdout io.Writer = os.Stdout

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenDatabase opens the positions database and brings its schema up to date.
func OpenDatabase(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(*dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewFetcher builds an uncached fetcher against the configured chart API,
// normalizing symbols the same way the server does.
func NewFetcher() *quote.Fetcher {
	return quote.NewFetcher(yahoo.NewFinanceClient(*yahooURL), quote.Options{
		Timeout:       *timeout,
		NumericSuffix: *numericSuffix,
	})
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		log.Printf("markdown renderer unavailable: %v", err)
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("failed to render markdown: %v", err)
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

func fail(format string, args ...interface{}) subcommands.ExitStatus {
	failPrint(format, args...)
	return subcommands.ExitFailure
}

func failPrint(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

func clearScreen() {
	fmt.Fprint(stdout, "\033[2J\033[H")
}
