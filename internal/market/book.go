// Package market holds the most recently consumed order-book snapshot per
// symbol and exposes the derived values a strategy queries: mid price,
// best bid/ask, and depth. It does not fetch data itself — the engine
// pushes each tick's snapshots in as the clock advances.
package market

import (
	"errors"
	"fmt"
	"sync"

	"replaysim/pkg/types"
)

// ErrNoData is returned by any query for a symbol that has not yet
// received its first snapshot.
var ErrNoData = errors.New("market: no data for symbol")

// Cache holds the latest snapshot per symbol. RWMutex protected like the
// teacher's Book, even though the simulator's synchronous engine only ever
// calls it from one goroutine on the strategy's call stack — a read-only
// observer (a dashboard polling mid-run) could otherwise race the engine.
type Cache struct {
	mu       sync.RWMutex
	snapshot map[string]types.Snapshot
}

// NewCache builds an empty Cache.
func NewCache() *Cache {
	return &Cache{snapshot: make(map[string]types.Snapshot)}
}

// Update replaces the stored snapshot for snap.Symbol.
func (c *Cache) Update(snap types.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot[snap.Symbol] = snap
}

// Snapshot returns the latest snapshot for symbol.
func (c *Cache) Snapshot(symbol string) (types.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.snapshot[symbol]
	if !ok {
		return types.Snapshot{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return snap, nil
}

// Mid returns (best_bid + best_ask) / 2 for symbol.
func (c *Cache) Mid(symbol string) (float64, error) {
	snap, err := c.Snapshot(symbol)
	if err != nil {
		return 0, err
	}
	mid, ok := snap.Mid()
	if !ok {
		return 0, fmt.Errorf("%w: %s has no two-sided book yet", ErrNoData, symbol)
	}
	return mid, nil
}

// BestBidAsk returns the top-of-book levels for symbol.
func (c *Cache) BestBidAsk(symbol string) (bid, ask types.PriceLevel, err error) {
	snap, err := c.Snapshot(symbol)
	if err != nil {
		return types.PriceLevel{}, types.PriceLevel{}, err
	}
	bid, _ = snap.BestBid()
	ask, _ = snap.BestAsk()
	return bid, ask, nil
}

// Orderbook returns up to depth levels per side for symbol, plus the
// snapshot's event and local-arrival timestamps.
func (c *Cache) Orderbook(symbol string, depth int) (types.OrderbookView, error) {
	snap, err := c.Snapshot(symbol)
	if err != nil {
		return types.OrderbookView{}, err
	}

	view := types.OrderbookView{Ts: snap.Ts, Cts: snap.TsLocal}
	if view.Cts == 0 {
		view.Cts = snap.Ts
	}
	for _, lvl := range snap.BidDepth(depth) {
		view.Bids = append(view.Bids, [2]float64{lvl.Price, lvl.Size})
	}
	for _, lvl := range snap.AskDepth(depth) {
		view.Asks = append(view.Asks, [2]float64{lvl.Price, lvl.Size})
	}
	return view, nil
}

// Latency returns the simulated market-data latency for symbol. It is
// always 0 in this core; the method exists only so the facade's method set
// stays symmetric with what a live exchange client would expose, exactly as
// the original engine keeps a get_latency that never varies.
func (c *Cache) Latency(symbol string) float64 {
	return 0
}

// HasData reports whether symbol has received at least one snapshot.
func (c *Cache) HasData(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.snapshot[symbol]
	return ok
}
