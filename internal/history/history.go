// Package history is the append-only ledger of executions and filled
// orders. It never rewrites or removes a record; every query returns a
// fresh copy so callers cannot observe or mutate internal state.
package history

import (
	"replaysim/internal/position"
	"replaysim/pkg/types"
)

// Ledger accumulates executions and filled orders as the engine matches
// fills, and synthesizes PnL records on demand from live positions.
type Ledger struct {
	executions []types.Execution
	filled     []types.Order
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{}
}

// RecordFill appends an execution and its corresponding filled order. Both
// are appended in fill order, matching spec.md §5's ordering guarantee.
func (l *Ledger) RecordFill(exec types.Execution, order types.Order) {
	l.executions = append(l.executions, exec)
	l.filled = append(l.filled, order)
}

// Executions returns a copy of the recorded executions, optionally
// filtered by symbol and a time range. The tail limit is applied to the
// raw log first, then the filters — matching the original engine's
// get_trade_history, which slices execution_history[-limit:] before
// checking symbol/start_time/end_time, so a narrow filter can return
// fewer than Limit records even when more would match further back.
func (l *Ledger) Executions(q types.HistoryQuery) []types.Execution {
	out := make([]types.Execution, 0)
	for _, e := range tail(l.executions, q.Limit) {
		if q.Symbol != "" && e.Symbol != q.Symbol {
			continue
		}
		if q.Start != 0 && e.ExecTime < q.Start {
			continue
		}
		if q.End != 0 && e.ExecTime > q.End {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilledOrders returns a copy of the filled-orders log, with the same
// tail-then-filter order as Executions.
func (l *Ledger) FilledOrders(q types.HistoryQuery) []types.Order {
	out := make([]types.Order, 0)
	for _, o := range tail(l.filled, q.Limit) {
		if q.Symbol != "" && o.Symbol != q.Symbol {
			continue
		}
		if q.Start != 0 && o.ExecutionTime < q.Start {
			continue
		}
		if q.End != 0 && o.ExecutionTime > q.End {
			continue
		}
		out = append(out, o)
	}
	return out
}

// tail truncates a slice to its last limit elements. limit <= 0 means no
// truncation; neither the ledger nor the facade applies a default page size.
func tail[T any](s []T, limit int) []T {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}

// Len reports the total number of recorded executions, used by
// GetSimulationStats' total_trades field.
func (l *Ledger) Len() int {
	return len(l.executions)
}

// PnL synthesizes a PnLRecord per requested symbol directly from the live
// positions, recomputed on every call rather than cached — matching
// get_pnl's "recalculated each call" behavior in the original engine. An
// empty symbols list returns a record for every position, mirroring the
// original's "no symbol filter means all positions."
func PnL(now types.Timestamp, positions map[string]*position.Position, symbols []string) []types.PnLRecord {
	if len(symbols) == 0 {
		symbols = make([]string, 0, len(positions))
		for s := range positions {
			symbols = append(symbols, s)
		}
	}

	var out []types.PnLRecord
	for _, symbol := range symbols {
		pos, ok := positions[symbol]
		if !ok {
			continue
		}
		out = append(out, types.PnLRecord{
			Symbol:        symbol,
			RealizedPnL:   pos.RealizedPnL,
			UnrealizedPnL: pos.UnrealizedPnL,
			UpdatedTime:   now,
		})
	}
	return out
}
