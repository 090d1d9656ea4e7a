package engine

import "replaysim/pkg/types"

// Exchange is the operations surface a strategy calls, shaped so that a
// live exchange REST/WebSocket client could implement the same signatures
// and be swapped in for Engine without the strategy noticing. No live
// client exists in this repository; Engine is the only implementation.
type Exchange interface {
	PlaceOrder(symbol string, qty, price float64, orderType types.OrderType) (types.PlaceResult, error)
	CancelOrder(id string) bool
	CancelAllOrders(symbol string) []string
	ClosePositions(symbols []string) map[string]*types.PlaceResult

	GetPositions(symbols []string) map[string]types.PositionView
	GetWalletBalance() float64
	SetLeverage(symbol string, leverage float64) error

	GetMid(symbol string) (float64, error)
	GetBid(symbol string) (types.PriceLevel, error)
	GetAsk(symbol string) (types.PriceLevel, error)
	GetOrderbook(symbol string, depth int) (types.OrderbookView, error)

	GetTrades(q types.HistoryQuery) []types.Execution
	GetTradeHistory(q types.HistoryQuery) []types.Execution
	GetFilledOrders(q types.HistoryQuery) []types.Order
	GetPnL(symbols []string) []types.PnLRecord
	GetSimulationStats() types.SimulationStats

	Next() bool
	Wait(d types.Timestamp) bool
	WaitSeconds(seconds float64) bool
	WaitMinutes(minutes float64) bool
	GetCurrentTime() types.Timestamp
}
