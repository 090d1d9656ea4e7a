// Package report renders engine state into the decimal-formatted strings a
// human operator or a CLI table expects. Core simulation math stays in
// float64 throughout the engine; report is the one boundary where values are
// converted to shopspring/decimal for display, so rounding never leaks back
// into the matching or position accounting.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"replaysim/pkg/types"
)

// dec rounds a float64 to 8 decimal places, matching the precision the
// original engine's reporting layer used for USD and quantity figures.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(8)
}

// Stats renders a SimulationStats snapshot as a multi-line summary, ordered
// by symbol for a stable diff between successive reports.
func Stats(s types.SimulationStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "time=%d wallet=%s total_pnl=%s total_trades=%d open_orders=%d\n",
		s.CurrentTime, dec(s.WalletBalance), dec(s.TotalPnL), s.TotalTrades, s.OpenOrders)

	symbols := make([]string, 0, len(s.Positions))
	for sym := range s.Positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		p := s.Positions[sym]
		fmt.Fprintf(&b, "  %s size=%s unrealized=%s realized=%s\n",
			sym, dec(p.Size), dec(p.UnrealizedPnL), dec(p.RealizedPnL))
	}
	return b.String()
}

// PnL renders a slice of PnLRecord as one line per symbol, sorted for
// deterministic output.
func PnL(records []types.PnLRecord) string {
	sorted := append([]types.PnLRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	var b strings.Builder
	for _, r := range sorted {
		fmt.Fprintf(&b, "%s realized=%s unrealized=%s updated=%d\n",
			r.Symbol, dec(r.RealizedPnL), dec(r.UnrealizedPnL), r.UpdatedTime)
	}
	return b.String()
}

// TradeHistory renders a slice of executions as one line per fill, in the
// order given (callers are expected to pass an already-queried, already-
// ordered slice from the ledger).
func TradeHistory(execs []types.Execution) string {
	var b strings.Builder
	for _, e := range execs {
		fmt.Fprintf(&b, "%d %s %s %s@%s fee=%s\n",
			e.ExecTime, e.Symbol, e.Side, dec(e.Qty), dec(e.Price), dec(e.Fee))
	}
	return b.String()
}

// Position renders a single PositionView line, such as one entry of the
// map GetPositions returns.
func Position(symbol string, v types.PositionView) string {
	return fmt.Sprintf("%s size=%s avg=%s mark=%s balance=%s leverage=%s unrealized=%s realized=%s",
		symbol, dec(v.Size), dec(v.AvgEntryPrice), dec(v.MarkPrice), dec(v.PositionBalance),
		dec(v.Leverage), dec(v.UnrealizedPnL), dec(v.RealizedPnL))
}
