package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/display"
	"github.com/alphapocket/pocket-backend/internal/model"
)

// signedMoney is display.Money with an explicit plus for gains.
func signedMoney(amount decimal.Decimal, currency string) string {
	s := display.Money(amount, currency)
	if amount.IsPositive() {
		return "+" + s
	}
	return s
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// SnapshotMarkdown renders a portfolio snapshot as a markdown report. Totals
// are shown in currency, row prices in each quote's own currency.
func SnapshotMarkdown(snap model.PortfolioSnapshot, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio on %s\n\n", snap.ComputedAt.Format(time.DateOnly))

	pct := display.Percent(snap.DailyPnLPct)
	if snap.PctUndefined {
		pct = "n/a"
	}
	fmt.Fprintf(&b, "**Total value** %s  \n", display.Money(snap.TotalValue, currency))
	fmt.Fprintf(&b, "**Daily P&L** %s (%s) %s\n\n", signedMoney(snap.DailyPnL, currency), pct, display.Direction(snap.DailyPnL))

	b.WriteString("| Symbol | Name | Shares | Price | Change | Value | Unrealized |\n")
	b.WriteString("|:---|:---|---:|---:|---:|---:|---:|\n")
	for _, row := range snap.Positions {
		if !row.OK() {
			fmt.Fprintf(&b, "| %s | %s | | | | | %s |\n", row.Symbol, cell(row.Name), cell("error: "+row.Err.Error()))
			continue
		}
		s := row.Snapshot
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			s.Symbol,
			cell(s.Name),
			s.Shares.String(),
			display.Money(s.CurrentPrice, s.Currency),
			display.Percent(s.ChangePct),
			display.Money(s.Value, s.Currency),
			signedMoney(s.UnrealizedGain, s.Currency),
		)
	}

	fmt.Fprintf(&b, "\n%d resolved, %d failed.\n", snap.Resolved, snap.Failed)
	return b.String()
}

// HistoryMarkdown renders the daily portfolio values as a table.
func HistoryMarkdown(points []model.ValuePoint, currency string) string {
	var b strings.Builder
	b.WriteString("# Portfolio value\n\n")
	if len(points) == 0 {
		b.WriteString("No history available.\n")
		return b.String()
	}

	b.WriteString("| Date | Value | Change |\n")
	b.WriteString("|:---|---:|---:|\n")
	for i, p := range points {
		change := ""
		if i > 0 {
			change = signedMoney(p.Value.Sub(points[i-1].Value), currency)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Date.Format(time.DateOnly), display.Money(p.Value, currency), change)
	}
	return b.String()
}

// QuotesMarkdown renders one line per quoted symbol.
func QuotesMarkdown(rows []model.PositionResult) string {
	var b strings.Builder
	b.WriteString("| Symbol | Price | Prior | Change | As of |\n")
	b.WriteString("|:---|---:|---:|---:|:---|\n")
	for _, row := range rows {
		if !row.OK() {
			fmt.Fprintf(&b, "| %s | %s | | | |\n", row.Symbol, cell("error: "+row.Err.Error()))
			continue
		}
		s := row.Snapshot
		fmt.Fprintf(&b, "| %s | %s | %s | %s (%s) | %s |\n",
			s.Symbol,
			display.Money(s.CurrentPrice, s.Currency),
			display.Money(s.PriorPrice, s.Currency),
			signedMoney(s.ChangeAmount, s.Currency),
			display.Percent(s.ChangePct),
			s.AsOf.Format(time.DateOnly),
		)
	}
	return b.String()
}
