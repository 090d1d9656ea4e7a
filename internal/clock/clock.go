// Package clock owns the virtual time cursor: the current simulation time
// and, per symbol, the position of a sorted snapshot stream. It has no
// notion of wall-clock time — every advance is driven by the recorded
// timestamps of the snapshots it was constructed with.
package clock

import (
	"sort"

	"replaysim/pkg/types"
)

// Cursor advances through one or more symbols' snapshot streams in
// timestamp order, either one coalesced tick at a time or by jumping
// directly to the first snapshot at or after a target time.
type Cursor struct {
	symbols     []string
	streams     map[string][]types.Snapshot
	index       map[string]int
	currentTime types.Timestamp
}

// New builds a Cursor over the given per-symbol snapshot streams. Each
// stream must already be sorted by Ts ascending; Cursor does not sort.
func New(streams map[string][]types.Snapshot) *Cursor {
	symbols := make([]string, 0, len(streams))
	index := make(map[string]int, len(streams))
	for symbol := range streams {
		symbols = append(symbols, symbol)
		index[symbol] = 0
	}
	sort.Strings(symbols) // deterministic iteration order for the coalesced tick tie-break

	return &Cursor{
		symbols: symbols,
		streams: streams,
		index:   index,
	}
}

// CurrentTime returns the timestamp of the most recently consumed tick.
func (c *Cursor) CurrentTime() types.Timestamp {
	return c.currentTime
}

// Step peeks the next snapshot for every symbol, picks the minimum
// timestamp across all of them, and consumes every snapshot that shares
// that minimum (a coalesced tick). It returns the consumed snapshots — in
// Cursor's fixed symbol order, not arrival order, since the spec leaves tie
// order among simultaneous symbols unspecified — and false once every
// stream is exhausted.
func (c *Cursor) Step() (consumed []types.Snapshot, ok bool) {
	var minTime types.Timestamp
	haveMin := false

	for _, symbol := range c.symbols {
		snap, exists := c.peek(symbol)
		if !exists {
			continue
		}
		if !haveMin || snap.Ts < minTime {
			minTime = snap.Ts
			haveMin = true
		}
	}

	if !haveMin {
		return nil, false
	}

	for _, symbol := range c.symbols {
		snap, exists := c.peek(symbol)
		if !exists || snap.Ts != minTime {
			continue
		}
		c.index[symbol]++
		consumed = append(consumed, snap)
	}

	c.currentTime = minTime
	return consumed, true
}

func (c *Cursor) peek(symbol string) (types.Snapshot, bool) {
	stream := c.streams[symbol]
	i := c.index[symbol]
	if i >= len(stream) {
		return types.Snapshot{}, false
	}
	return stream[i], true
}

// JumpTo advances every symbol's index with a binary search to the first
// snapshot whose Ts is >= target, then performs one Step so currentTime and
// the caller's market-state cache land on a real snapshot at or after
// target rather than on the target itself. It returns false if no symbol
// had any snapshot left to advance to, mirroring the source engine's
// "jump found nothing, simulation over" behavior.
func (c *Cursor) JumpTo(target types.Timestamp) (consumed []types.Snapshot, ok bool) {
	advancedAny := false

	for _, symbol := range c.symbols {
		stream := c.streams[symbol]
		start := c.index[symbol]
		if start >= len(stream) {
			continue
		}

		remaining := stream[start:]
		match := sort.Search(len(remaining), func(i int) bool {
			return remaining[i].Ts >= target
		})
		c.index[symbol] = start + match
		if match < len(remaining) {
			advancedAny = true
		}
	}

	if !advancedAny {
		return nil, false
	}
	return c.Step()
}

// Exhausted reports whether every symbol's stream has been fully consumed.
func (c *Cursor) Exhausted() bool {
	for _, symbol := range c.symbols {
		if c.index[symbol] < len(c.streams[symbol]) {
			return false
		}
	}
	return true
}
