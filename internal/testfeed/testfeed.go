// Package testfeed is an in-memory feed.Source used by the engine's test
// suite and by example harnesses that don't have a real historical data
// store wired up. Snapshots are supplied directly by the caller and sorted
// once by timestamp, the same normalization the original data loader
// performs with `df.sort('ts')` before the engine ever sees it.
package testfeed

import (
	"sort"

	"replaysim/pkg/types"
)

// Feed is a fixed set of per-symbol snapshots held in memory.
type Feed struct {
	bySymbol map[string][]types.Snapshot
}

// New builds a Feed from caller-supplied snapshots. Snapshots may be given
// in any order; New sorts each symbol's slice by Ts ascending.
func New(snapshots map[string][]types.Snapshot) *Feed {
	f := &Feed{bySymbol: make(map[string][]types.Snapshot, len(snapshots))}
	for symbol, snaps := range snapshots {
		cp := make([]types.Snapshot, len(snaps))
		copy(cp, snaps)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Ts < cp[j].Ts })
		f.bySymbol[symbol] = cp
	}
	return f
}

// Load returns the symbol's snapshots with Ts in [start, end), truncating
// each side's levels to depth. depth <= 0 or > types.MaxLevels means no
// truncation.
func (f *Feed) Load(symbol string, start, end types.Timestamp, depth int) ([]types.Snapshot, error) {
	all := f.bySymbol[symbol]
	out := make([]types.Snapshot, 0, len(all))
	for _, s := range all {
		if s.Ts < start || s.Ts >= end {
			continue
		}
		out = append(out, truncateDepth(s, depth))
	}
	return out, nil
}

func truncateDepth(s types.Snapshot, depth int) types.Snapshot {
	if depth <= 0 || depth >= types.MaxLevels {
		return s
	}
	for i := depth; i < types.MaxLevels; i++ {
		s.Bids[i] = types.PriceLevel{}
		s.Asks[i] = types.PriceLevel{}
	}
	return s
}
