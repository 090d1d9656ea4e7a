// Package engine is the central orchestrator of the replay simulator.
//
// It wires together every leaf component:
//
//  1. clock.Cursor advances virtual time across one or more symbols' ordered
//     snapshot streams, either one coalesced tick at a time or by jumping to
//     a target time.
//  2. market.Cache holds the latest snapshot per symbol and feeds mark
//     prices to positions.
//  3. pipeline.Pipeline owns every order between placement and its terminal
//     state, promoting Pending orders into Active once latency elapses.
//  4. matching applies the market/limit fill rules against the current
//     snapshot.
//  5. position.Position and the wallet balance absorb every fill.
//  6. history.Ledger appends an Execution and a filled Order for every fill.
//
// Engine is the sole implementation of the Exchange interface in this
// repository; a live exchange client would implement the same signatures.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"replaysim/internal/clock"
	"replaysim/internal/history"
	"replaysim/internal/latency"
	"replaysim/internal/market"
	"replaysim/internal/matching"
	"replaysim/internal/pipeline"
	"replaysim/internal/position"
	"replaysim/pkg/feed"
	"replaysim/pkg/types"
)

// ErrUnknownSymbol is returned by PlaceOrder for a symbol not in the
// engine's subscribed list.
var ErrUnknownSymbol = errors.New("engine: unknown symbol")

// Params are the engine's construction-time parameters, matching spec.md
// §6's "Engine construction parameters" table.
type Params struct {
	Symbols        []string
	StartTime      types.Timestamp
	EndTime        types.Timestamp
	InitialBalance float64
	MakerFee       float64
	TakerFee       float64
	Market         string
	Latency        latency.Config
	Seed           int64
	// Depth bounds how many book levels are requested from the feed per
	// side; 0 means all MaxLevels.
	Depth int
}

// Engine is the replay simulator: a time-stepping scheduler over per-symbol
// snapshot streams, a latency-aware order pipeline, and the position/wallet
// accounting those fills feed. Single-threaded and synchronous — every
// method is called on the strategy's own call stack; no operation blocks or
// yields.
type Engine struct {
	symbols map[string]bool

	cursor   *clock.Cursor
	cache    *market.Cache
	model    *latency.Model
	pipeline *pipeline.Pipeline
	ledger   *history.Ledger
	logger   *slog.Logger

	positions map[string]*position.Position
	wallet    float64

	initialBalance float64
	makerFee       float64
	takerFee       float64
	market         string
}

// New loads each subscribed symbol's snapshots from source over
// [p.StartTime, p.EndTime), builds the engine's leaf components, and
// advances the clock exactly once so current time and the market-state
// cache are initialized before the first strategy call. If every stream
// comes back empty, the returned Engine is immediately Exhausted; it is not
// an error — the first market-data query simply fails with NoData.
//
// logger is tagged "component":"engine", matching the teacher's
// engine.New(cfg, logger). The leaf components it wires (clock.Cursor,
// market.Cache, latency.Model, pipeline.Pipeline, history.Ledger,
// position.Position) stay plain data trackers with no logger of their
// own, the same way the teacher's Book and Inventory trackers do — only
// orchestrating components (Scanner, risk.Manager, exchange.Client,
// strategy.Maker, and here Engine) carry one.
func New(p Params, source feed.Source, logger *slog.Logger) (*Engine, error) {
	if len(p.Symbols) == 0 {
		return nil, fmt.Errorf("engine: at least one symbol is required")
	}
	logger = logger.With("component", "engine")

	streams := make(map[string][]types.Snapshot, len(p.Symbols))
	symbols := make(map[string]bool, len(p.Symbols))
	for _, sym := range p.Symbols {
		snaps, err := source.Load(sym, p.StartTime, p.EndTime, p.Depth)
		if err != nil {
			logger.Error("load snapshots failed", "symbol", sym, "error", err)
			return nil, fmt.Errorf("engine: load %s: %w", sym, err)
		}
		streams[sym] = snaps
		symbols[sym] = true
	}

	positions := make(map[string]*position.Position, len(p.Symbols))
	for _, sym := range p.Symbols {
		positions[sym] = position.New(sym)
	}

	e := &Engine{
		symbols:        symbols,
		cursor:         clock.New(streams),
		cache:          market.NewCache(),
		model:          latency.New(p.Latency, p.Seed),
		pipeline:       pipeline.New(),
		ledger:         history.New(),
		logger:         logger,
		positions:      positions,
		wallet:         p.InitialBalance,
		initialBalance: p.InitialBalance,
		makerFee:       p.MakerFee,
		takerFee:       p.TakerFee,
		market:         p.Market,
	}

	logger.Info("engine constructed",
		"symbols", len(symbols),
		"initial_balance", p.InitialBalance,
		"market", p.Market,
	)

	if consumed, ok := e.cursor.Step(); ok {
		e.tick(consumed)
	}
	return e, nil
}

// isSubscribed reports whether symbol was in the engine's constructed
// symbol list.
func (e *Engine) isSubscribed(symbol string) bool {
	return e.symbols[symbol]
}

// tick applies one coalesced step's worth of consumed snapshots: refresh
// the market-state cache and every affected position's mark price, promote
// Pending orders whose latency has elapsed, then match every Active order
// against the current snapshot. Matches spec.md §4's per-tick ordering:
// promotion strictly before matching.
func (e *Engine) tick(consumed []types.Snapshot) {
	for _, snap := range consumed {
		e.cache.Update(snap)
		if pos, ok := e.positions[snap.Symbol]; ok {
			if mid, ok := snap.Mid(); ok {
				pos.UpdateMarkPrice(mid)
			}
		}
	}

	now := e.cursor.CurrentTime()
	e.pipeline.Promote(now)

	for _, o := range e.pipeline.Active() {
		snap, err := e.cache.Snapshot(o.Symbol)
		if err != nil {
			// No snapshot for this symbol yet: deferred silently to the
			// next tick, per spec.md §9 open question (b).
			continue
		}
		fill, ok := matching.Match(o, snap, e.model)
		if !ok {
			continue
		}
		e.applyFill(o, fill, now)
	}
}

// applyFill books a single fill: deducts the fee from the wallet, applies
// the signed trade to the symbol's position, appends an execution record,
// and moves the order from Active into the filled-orders history.
func (e *Engine) applyFill(o *types.Order, fill matching.Fill, now types.Timestamp) {
	feeRate := e.makerFee
	if o.Type == types.Market {
		feeRate = e.takerFee
	}
	fee := fill.Qty * fill.Price * feeRate
	e.wallet -= fee

	signedQty := fill.Qty
	if o.Side == types.Sell {
		signedQty = -fill.Qty
	}
	if pos, ok := e.positions[o.Symbol]; ok {
		pos.AddTrade(signedQty, fill.Price, fee)
	}

	o.Status = types.StatusFilled
	o.FilledQty = o.Qty
	o.AvgFillPrice = fill.Price

	exec := types.Execution{
		ID:         uuid.New().String(),
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Price:      fill.Price,
		Qty:        fill.Qty,
		ExecValue:  fill.Qty * fill.Price,
		Fee:        fee,
		FeeRate:    feeRate,
		ExecTime:   now,
		OrderType:  o.Type,
		OrderPrice: o.Price,
	}
	e.ledger.RecordFill(exec, *o)
	e.pipeline.Remove(o.ID)

	e.logger.Info("fill",
		"order_id", o.ID,
		"symbol", o.Symbol,
		"side", o.Side,
		"qty", fill.Qty,
		"price", fill.Price,
		"fee", fee,
	)
}

// PlaceOrder validates symbol, samples submission latency, and enqueues a
// new Pending order. side is derived from the sign of qty: positive is Buy,
// negative is Sell — qty stored on the order itself is always positive.
func (e *Engine) PlaceOrder(symbol string, qty, price float64, orderType types.OrderType) (types.PlaceResult, error) {
	if !e.isSubscribed(symbol) {
		e.logger.Warn("order rejected: unknown symbol", "symbol", symbol)
		return types.PlaceResult{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if qty == 0 {
		e.logger.Warn("order rejected: zero qty", "symbol", symbol)
		return types.PlaceResult{}, fmt.Errorf("engine: qty must be nonzero")
	}

	side := types.Buy
	absQty := qty
	if qty < 0 {
		side = types.Sell
		absQty = -qty
	}

	now := e.cursor.CurrentTime()
	order := &types.Order{
		ID:             uuid.New().String(),
		Symbol:         symbol,
		Side:           side,
		Qty:            absQty,
		Price:          price,
		Type:           orderType,
		SubmissionTime: now,
		ExecutionTime:  now + e.model.SampleSubmissionLatency(),
	}
	e.pipeline.Place(order)

	e.logger.Debug("order placed",
		"order_id", order.ID,
		"symbol", symbol,
		"side", side,
		"qty", absQty,
		"type", orderType,
	)
	return types.PlaceResult{OrderID: order.ID, Time: now}, nil
}

// CancelOrder removes id from the Active set. It returns true on removal,
// false otherwise — including when id is still Pending, matching the
// source engine's cancel_order, which never scans the pending queue (see
// spec.md §9 open question (a)).
func (e *Engine) CancelOrder(id string) bool {
	ok := e.pipeline.Cancel(id)
	e.logger.Debug("cancel order", "order_id", id, "cancelled", ok)
	return ok
}

// CancelAllOrders cancels every Active order for symbol and returns their
// ids. Like CancelOrder, Pending orders for symbol are left untouched.
func (e *Engine) CancelAllOrders(symbol string) []string {
	ids := e.pipeline.CancelAll(symbol)
	e.logger.Info("cancelled all orders", "symbol", symbol, "count", len(ids))
	return ids
}

// ClosePositions places a market order with qty = -position.Size for each
// symbol with a nonzero position. A symbol whose position is already flat
// gets a nil entry rather than an error, matching the source engine's
// close_positions, which returns None for a flat symbol (spec.md §9 open
// question (c)).
func (e *Engine) ClosePositions(symbols []string) map[string]*types.PlaceResult {
	out := make(map[string]*types.PlaceResult, len(symbols))
	for _, sym := range symbols {
		pos, ok := e.positions[sym]
		if !ok || pos.Size == 0 {
			out[sym] = nil
			continue
		}
		res, err := e.PlaceOrder(sym, -pos.Size, 0, types.Market)
		if err != nil {
			out[sym] = nil
			continue
		}
		out[sym] = &res
	}
	return out
}

// GetPositions returns a PositionView per requested symbol. An empty
// symbols list returns every subscribed symbol's position.
func (e *Engine) GetPositions(symbols []string) map[string]types.PositionView {
	if len(symbols) == 0 {
		symbols = e.allSymbols()
	}
	out := make(map[string]types.PositionView, len(symbols))
	for _, sym := range symbols {
		if pos, ok := e.positions[sym]; ok {
			out[sym] = pos.View()
		}
	}
	return out
}

// GetWalletBalance returns the scalar wallet balance: initial balance minus
// every fee paid so far. Realized PnL is booked into positions, not the
// wallet directly — GetSimulationStats and GetPnL surface it.
func (e *Engine) GetWalletBalance() float64 {
	return e.wallet
}

// SetLeverage stores leverage on symbol's position. It has no effect on
// matching or fill eligibility, matching the source engine's set_leverage.
func (e *Engine) SetLeverage(symbol string, leverage float64) error {
	pos, ok := e.positions[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	pos.Leverage = leverage
	return nil
}

// GetMid, GetBid, GetAsk, and GetOrderbook delegate directly to the
// market-state cache.

func (e *Engine) GetMid(symbol string) (float64, error) {
	return e.cache.Mid(symbol)
}

func (e *Engine) GetBid(symbol string) (types.PriceLevel, error) {
	bid, _, err := e.cache.BestBidAsk(symbol)
	return bid, err
}

func (e *Engine) GetAsk(symbol string) (types.PriceLevel, error) {
	_, ask, err := e.cache.BestBidAsk(symbol)
	return ask, err
}

func (e *Engine) GetOrderbook(symbol string, depth int) (types.OrderbookView, error) {
	return e.cache.Orderbook(symbol, depth)
}

// GetTrades returns executions from the ledger; it is an alias for
// GetTradeHistory, matching the source engine's two equivalent accessors
// over the same execution log.
func (e *Engine) GetTrades(q types.HistoryQuery) []types.Execution {
	return e.ledger.Executions(q)
}

func (e *Engine) GetTradeHistory(q types.HistoryQuery) []types.Execution {
	return e.ledger.Executions(q)
}

func (e *Engine) GetFilledOrders(q types.HistoryQuery) []types.Order {
	return e.ledger.FilledOrders(q)
}

// GetPnL synthesizes a PnLRecord per requested symbol from live positions.
// An empty symbols list returns a record for every position.
func (e *Engine) GetPnL(symbols []string) []types.PnLRecord {
	return history.PnL(e.cursor.CurrentTime(), e.positions, symbols)
}

// GetSimulationStats summarizes wallet, aggregate PnL, trade count, open
// order count, and per-symbol position stats for symbols with nonzero size.
func (e *Engine) GetSimulationStats() types.SimulationStats {
	stats := types.SimulationStats{
		CurrentTime:   e.cursor.CurrentTime(),
		WalletBalance: e.wallet,
		TotalTrades:   e.ledger.Len(),
		OpenOrders:    e.pipeline.ActiveCount() + e.pipeline.PendingCount(),
		Positions:     make(map[string]types.PositionStats),
	}

	var totalPnL float64
	for sym, pos := range e.positions {
		totalPnL += pos.RealizedPnL + pos.UnrealizedPnL
		if pos.Size == 0 {
			continue
		}
		stats.Positions[sym] = types.PositionStats{
			Size:          pos.Size,
			UnrealizedPnL: pos.UnrealizedPnL,
			RealizedPnL:   pos.RealizedPnL,
		}
	}
	stats.TotalPnL = totalPnL
	return stats
}

// Next advances the clock by a single coalesced tick and runs that tick's
// promote-then-match cycle. It returns false once every symbol's stream is
// exhausted; the engine is then terminal.
func (e *Engine) Next() bool {
	consumed, ok := e.cursor.Step()
	if !ok {
		e.logger.Info("stream exhausted", "current_time", e.cursor.CurrentTime())
		return false
	}
	e.tick(consumed)
	return true
}

// Wait jumps directly to the first snapshot at or after current time + d,
// via a binary search per symbol rather than iterating every intervening
// snapshot, then runs one tick. It returns false if no stream has a
// snapshot at or after current time + d.
func (e *Engine) Wait(d types.Timestamp) bool {
	target := e.cursor.CurrentTime() + d
	consumed, ok := e.cursor.JumpTo(target)
	if !ok {
		return false
	}
	e.tick(consumed)
	return true
}

// WaitSeconds converts seconds to nanoseconds and delegates to Wait.
func (e *Engine) WaitSeconds(seconds float64) bool {
	return e.Wait(types.Timestamp(seconds * float64(types.Second)))
}

// WaitMinutes converts minutes to nanoseconds and delegates to Wait.
func (e *Engine) WaitMinutes(minutes float64) bool {
	return e.Wait(types.Timestamp(minutes * float64(types.Minute)))
}

// GetCurrentTime returns the virtual clock's current timestamp.
func (e *Engine) GetCurrentTime() types.Timestamp {
	return e.cursor.CurrentTime()
}

// Exhausted reports whether every subscribed symbol's stream has been
// fully consumed.
func (e *Engine) Exhausted() bool {
	return e.cursor.Exhausted()
}

func (e *Engine) allSymbols() []string {
	out := make([]string, 0, len(e.symbols))
	for sym := range e.symbols {
		out = append(out, sym)
	}
	return out
}

var _ Exchange = (*Engine)(nil)
