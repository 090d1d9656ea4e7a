package market

import (
	"errors"
	"testing"

	"replaysim/pkg/types"
)

func snap(symbol string, bid, ask float64) types.Snapshot {
	s := types.Snapshot{Symbol: symbol, Ts: 1}
	s.Bids[0] = types.PriceLevel{Price: bid, Size: 1}
	s.Asks[0] = types.PriceLevel{Price: ask, Size: 1}
	return s
}

func TestCacheSnapshotNoData(t *testing.T) {
	t.Parallel()
	c := NewCache()

	if _, err := c.Snapshot("BTC"); !errors.Is(err, ErrNoData) {
		t.Fatalf("Snapshot() error = %v, want ErrNoData", err)
	}
	if _, _, err := c.BestBidAsk("BTC"); !errors.Is(err, ErrNoData) {
		t.Fatalf("BestBidAsk() error = %v, want ErrNoData", err)
	}
	if c.HasData("BTC") {
		t.Fatal("HasData() = true before any Update")
	}
}

func TestCacheUpdateAndMid(t *testing.T) {
	t.Parallel()
	c := NewCache()
	c.Update(snap("BTC", 99, 101))

	if !c.HasData("BTC") {
		t.Fatal("HasData() = false after Update")
	}

	mid, err := c.Mid("BTC")
	if err != nil {
		t.Fatalf("Mid() error = %v", err)
	}
	if mid != 100 {
		t.Errorf("Mid() = %v, want 100", mid)
	}

	bid, ask, err := c.BestBidAsk("BTC")
	if err != nil {
		t.Fatalf("BestBidAsk() error = %v", err)
	}
	if bid.Price != 99 || ask.Price != 101 {
		t.Errorf("BestBidAsk() = %+v, %+v, want 99/101", bid, ask)
	}
}

func TestCacheOrderbookDepth(t *testing.T) {
	t.Parallel()
	c := NewCache()

	var s types.Snapshot
	s.Symbol = "BTC"
	s.Ts = 5
	s.TsLocal = 7
	s.Bids[0] = types.PriceLevel{Price: 100, Size: 1}
	s.Bids[1] = types.PriceLevel{Price: 99, Size: 2}
	s.Asks[0] = types.PriceLevel{Price: 101, Size: 1}
	c.Update(s)

	view, err := c.Orderbook("BTC", 1)
	if err != nil {
		t.Fatalf("Orderbook() error = %v", err)
	}
	if len(view.Bids) != 1 || view.Bids[0] != [2]float64{100, 1} {
		t.Errorf("Orderbook() bids = %v, want [[100 1]]", view.Bids)
	}
	if view.Ts != 5 || view.Cts != 7 {
		t.Errorf("Orderbook() ts/cts = %d/%d, want 5/7", view.Ts, view.Cts)
	}
}

func TestCacheOrderbookCtsDefaultsToTs(t *testing.T) {
	t.Parallel()
	c := NewCache()
	c.Update(snap("BTC", 99, 101))

	view, err := c.Orderbook("BTC", 0)
	if err != nil {
		t.Fatalf("Orderbook() error = %v", err)
	}
	if view.Cts != view.Ts {
		t.Errorf("Orderbook() cts = %d, want it to default to ts = %d", view.Cts, view.Ts)
	}
}

func TestCacheLatencyAlwaysZero(t *testing.T) {
	t.Parallel()
	c := NewCache()
	c.Update(snap("BTC", 99, 101))

	if got := c.Latency("BTC"); got != 0 {
		t.Errorf("Latency() = %v, want 0", got)
	}
}
