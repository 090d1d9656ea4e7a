package matching

import (
	"testing"

	"replaysim/internal/latency"
	"replaysim/pkg/types"
)

func book(bid, ask float64) types.Snapshot {
	var s types.Snapshot
	s.Bids[0] = types.PriceLevel{Price: bid, Size: 1}
	s.Asks[0] = types.PriceLevel{Price: ask, Size: 1}
	return s
}

func TestMatchMarketBuyAppliesSlippage(t *testing.T) {
	t.Parallel()
	m := latency.New(latency.Config{MarketOrderSlippageBps: 1}, 1)
	order := &types.Order{Type: types.Market, Side: types.Buy, Qty: 1}

	fill, ok := Match(order, book(99, 101), m)
	if !ok {
		t.Fatal("Match() ok = false for a market order with a valid book")
	}
	if fill.Price < 101 {
		t.Errorf("fill.Price = %v, want >= best ask 101 (slippage direction)", fill.Price)
	}
	if fill.Qty != 1 {
		t.Errorf("fill.Qty = %v, want 1", fill.Qty)
	}
}

func TestMatchMarketSellAppliesSlippage(t *testing.T) {
	t.Parallel()
	m := latency.New(latency.Config{MarketOrderSlippageBps: 1}, 1)
	order := &types.Order{Type: types.Market, Side: types.Sell, Qty: 1}

	fill, ok := Match(order, book(99, 101), m)
	if !ok {
		t.Fatal("Match() ok = false")
	}
	if fill.Price > 99 {
		t.Errorf("fill.Price = %v, want <= best bid 99 (slippage direction)", fill.Price)
	}
}

func TestMatchMarketNoSnapshotSideDefersSilently(t *testing.T) {
	t.Parallel()
	m := latency.New(latency.Config{}, 1)
	order := &types.Order{Type: types.Market, Side: types.Buy, Qty: 1}

	var empty types.Snapshot
	_, ok := Match(order, empty, m)
	if ok {
		t.Fatal("Match() ok = true against an empty snapshot")
	}
}

func TestMatchLimitBuyGatedByProbability(t *testing.T) {
	t.Parallel()
	order := &types.Order{Type: types.Limit, Side: types.Buy, Price: 100, Qty: 1}
	snap := book(98, 100)

	never := latency.New(latency.Config{LimitOrderFillProbability: 0}, 1)
	if _, ok := Match(order, snap, never); ok {
		t.Fatal("Match() filled with probability 0")
	}

	always := latency.New(latency.Config{LimitOrderFillProbability: 1}, 1)
	fill, ok := Match(order, snap, always)
	if !ok {
		t.Fatal("Match() did not fill with probability 1 and ask <= limit")
	}
	if fill.Price != 100 {
		t.Errorf("fill.Price = %v, want min(limit, ask) = 100", fill.Price)
	}
}

func TestMatchLimitBuyNotTouched(t *testing.T) {
	t.Parallel()
	always := latency.New(latency.Config{LimitOrderFillProbability: 1}, 1)
	order := &types.Order{Type: types.Limit, Side: types.Buy, Price: 100, Qty: 1}

	if _, ok := Match(order, book(98, 101), always); ok {
		t.Fatal("Match() filled a limit buy when ask > limit price")
	}
}

func TestMatchLimitSellTouch(t *testing.T) {
	t.Parallel()
	always := latency.New(latency.Config{LimitOrderFillProbability: 1}, 1)
	order := &types.Order{Type: types.Limit, Side: types.Sell, Price: 100, Qty: 1}

	fill, ok := Match(order, book(101, 103), always)
	if !ok {
		t.Fatal("Match() did not fill a limit sell when bid >= limit price")
	}
	if fill.Price != 101 {
		t.Errorf("fill.Price = %v, want max(limit, bid) = 101", fill.Price)
	}
}
