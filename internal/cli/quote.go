package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/service"
	"github.com/alphapocket/pocket-backend/internal/yahoo"
)

// quoteCmd is the 'quote' subcommand.
type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "display the latest quote of one or more symbols" }
func (*quoteCmd) Usage() string {
	return `pocketctl [-suffix <suffix>] quote <symbol>...

  Looks up each symbol and displays its latest close against the prior one.
  Four digit codes get the exchange suffix appended, e.g. 2330 -> 2330.TW.
`
}

func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one symbol is required")
		return subcommands.ExitUsageError
	}

	svc := service.NewWatchlistService(NewFetcher(), nil)

	status := subcommands.ExitSuccess
	rows := make([]model.PositionResult, 0, f.NArg())
	for _, arg := range f.Args() {
		row, err := svc.Search(ctx, arg)
		if err != nil {
			row = model.PositionResult{Symbol: yahoo.NormalizeSymbol(arg, *numericSuffix), Err: err}
			status = subcommands.ExitFailure
		}
		rows = append(rows, row)
	}

	printMarkdown(QuotesMarkdown(rows))
	return status
}

// normalizeCmd is the 'normalize' subcommand.
type normalizeCmd struct{}

func (*normalizeCmd) Name() string     { return "normalize" }
func (*normalizeCmd) Synopsis() string { return "print the canonical form of symbols" }
func (*normalizeCmd) Usage() string {
	return `pocketctl [-suffix <suffix>] normalize <input>...

  Prints one normalized symbol per line, as the watchlist would store it.
`
}

func (*normalizeCmd) SetFlags(*flag.FlagSet) {}

func (*normalizeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one input is required")
		return subcommands.ExitUsageError
	}
	for _, line := range Normalize(f.Args(), *numericSuffix) {
		fmt.Fprintln(stdout, line)
	}
	return subcommands.ExitSuccess
}

// Normalize returns the normalized form of every input, blanks included as
// empty strings.
func Normalize(inputs []string, suffix string) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = yahoo.NormalizeSymbol(in, suffix)
	}
	return out
}
