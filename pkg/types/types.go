// Package types defines the data structures shared across the simulator:
// order-book snapshots, orders, executions, and the query return shapes
// exposed through the exchange facade. It has no dependency on any other
// internal package, so every layer can import it freely.
package types

import "fmt"

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// OrderType distinguishes market orders, which fill immediately against the
// current snapshot with slippage, from limit orders, which fill
// probabilistically once the book trades through their price.
type OrderType string

const (
	Market OrderType = "Market"
	Limit  OrderType = "Limit"
)

// OrderStatus tracks an order through the pipeline: Pending orders are
// waiting out their submission latency, Active orders are resting and
// eligible to fill, Filled and Cancelled are terminal.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusActive    OrderStatus = "Active"
	StatusFilled    OrderStatus = "Filled"
	StatusCancelled OrderStatus = "Cancelled"
)

// Timestamp is nanoseconds since epoch. Every ordering decision and latency
// computation in the simulator operates on this scalar; there is no
// wall-clock read anywhere on the replay path.
type Timestamp int64

// Common Timestamp increments.
const (
	Nanosecond  Timestamp = 1
	Microsecond           = 1_000 * Nanosecond
	Millisecond           = 1_000 * Microsecond
	Second                = 1_000 * Millisecond
	Minute                = 60 * Second
	Hour                  = 60 * Minute
)

// ————————————————————————————————————————————————————————————————————————
// Order book
// ————————————————————————————————————————————————————————————————————————

// MaxLevels is the number of levels recorded per side of a Snapshot.
const MaxLevels = 25

// PriceLevel is a single bid or ask level.
type PriceLevel struct {
	Price float64
	Size  float64
}

// Snapshot is a point-in-time view of up to MaxLevels levels per side of one
// symbol's order book. Unpopulated trailing levels have Size == 0.
//
// Invariant: populated Bids are strictly descending by price, populated Asks
// are strictly ascending, and the best bid never exceeds the best ask.
type Snapshot struct {
	Symbol  string
	Ts      Timestamp // exchange event time
	TsLocal Timestamp // local arrival time; 0 if the feed doesn't provide one
	Bids    [MaxLevels]PriceLevel
	Asks    [MaxLevels]PriceLevel
}

// BestBid returns the top bid level, or false if the side is empty.
func (s Snapshot) BestBid() (PriceLevel, bool) {
	if s.Bids[0].Size <= 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level, or false if the side is empty.
func (s Snapshot) BestAsk() (PriceLevel, bool) {
	if s.Asks[0].Size <= 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// Mid returns the midpoint of the best bid and ask, or false if either side
// is empty.
func (s Snapshot) Mid() (float64, bool) {
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return (bid.Price + ask.Price) / 2, true
}

// BidDepth returns up to depth populated bid levels, best first.
func (s Snapshot) BidDepth(depth int) []PriceLevel {
	return populatedLevels(s.Bids[:], depth)
}

// AskDepth returns up to depth populated ask levels, best first.
func (s Snapshot) AskDepth(depth int) []PriceLevel {
	return populatedLevels(s.Asks[:], depth)
}

func populatedLevels(levels []PriceLevel, depth int) []PriceLevel {
	if depth <= 0 || depth > MaxLevels {
		depth = MaxLevels
	}
	out := make([]PriceLevel, 0, depth)
	for i := 0; i < depth && i < len(levels); i++ {
		if levels[i].Size <= 0 {
			break
		}
		out = append(out, levels[i])
	}
	return out
}

// Validate checks the ordering and no-cross invariants described on Snapshot.
func (s Snapshot) Validate() error {
	for i := 1; i < MaxLevels; i++ {
		if s.Bids[i].Size <= 0 {
			break
		}
		if s.Bids[i].Price >= s.Bids[i-1].Price {
			return fmt.Errorf("types: snapshot %s: bids not strictly descending at level %d", s.Symbol, i)
		}
	}
	for i := 1; i < MaxLevels; i++ {
		if s.Asks[i].Size <= 0 {
			break
		}
		if s.Asks[i].Price <= s.Asks[i-1].Price {
			return fmt.Errorf("types: snapshot %s: asks not strictly ascending at level %d", s.Symbol, i)
		}
	}
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if okB && okA && bid.Price > ask.Price {
		return fmt.Errorf("types: snapshot %s: crossed book, bid %v > ask %v", s.Symbol, bid.Price, ask.Price)
	}
	return nil
}

// ————————————————————————————————————————————————————————————————————————
// Orders and executions
// ————————————————————————————————————————————————————————————————————————

// Order is a simulated order. It lives in the pipeline from creation until
// it fills (becoming an Execution plus a terminal record in history) or is
// cancelled; callers refer to it only by ID, never by holding a pointer
// across a step.
type Order struct {
	ID             string
	Symbol         string
	Side           Side
	Qty            float64 // always positive; direction comes from Side
	Price          float64 // limit price; 0 for Market orders
	Type           OrderType
	SubmissionTime Timestamp
	ExecutionTime  Timestamp // SubmissionTime + sampled latency; fill eligibility starts here
	Status         OrderStatus
	FilledQty      float64
	AvgFillPrice   float64
}

// Remaining returns the unfilled quantity.
func (o Order) Remaining() float64 {
	r := o.Qty - o.FilledQty
	if r < 0 {
		return 0
	}
	return r
}

// Execution is an append-only record of a single fill.
type Execution struct {
	ID         string
	OrderID    string
	Symbol     string
	Side       Side
	Price      float64
	Qty        float64
	ExecValue  float64
	Fee        float64
	FeeRate    float64
	ExecTime   Timestamp
	OrderType  OrderType
	OrderPrice float64 // the order's limit price; 0 for Market
}

// ————————————————————————————————————————————————————————————————————————
// Facade query/response shapes
// ————————————————————————————————————————————————————————————————————————

// PlaceResult is returned by PlaceOrder.
type PlaceResult struct {
	OrderID string
	Time    Timestamp
}

// OrderbookView is the batch order-book query shape: price/size pairs per
// side plus the event and local-arrival timestamps of the snapshot used.
type OrderbookView struct {
	Bids [][2]float64
	Asks [][2]float64
	Ts   Timestamp
	Cts  Timestamp
}

// PositionView is the per-symbol position query shape.
type PositionView struct {
	Size            float64
	AvgEntryPrice   float64
	MarkPrice       float64
	Value           float64
	Leverage        float64
	PositionBalance float64
	UnrealizedPnL   float64
	RealizedPnL     float64
}

// PnLRecord is a PnL snapshot for one symbol, recomputed on each query
// against the latest mark price rather than cached.
type PnLRecord struct {
	Symbol        string
	RealizedPnL   float64
	UnrealizedPnL float64
	UpdatedTime   Timestamp
}

// SimulationStats summarizes engine state for diagnostics and reporting.
type SimulationStats struct {
	CurrentTime   Timestamp
	WalletBalance float64
	TotalPnL      float64
	TotalTrades   int
	OpenOrders    int
	Positions     map[string]PositionStats
}

// PositionStats is the per-symbol subset of SimulationStats; only symbols
// with a nonzero position are included.
type PositionStats struct {
	Size          float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// HistoryQuery filters a call to history.Ledger's Executions or
// FilledOrders.
type HistoryQuery struct {
	Symbol string    // empty matches all symbols
	Start  Timestamp // 0 means unbounded
	End    Timestamp // 0 means unbounded
	Limit  int       // 0 means unbounded; otherwise the most recent N
}
