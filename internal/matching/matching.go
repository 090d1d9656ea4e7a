// Package matching applies the market/limit fill rules against the
// current order-book snapshot. Fills are all-or-nothing against the best
// level on the opposite side — there is no walking the book, matching
// spec.md's explicit Non-goal on partial fills across levels.
package matching

import (
	"replaysim/internal/latency"
	"replaysim/pkg/types"
)

// Fill is the result of successfully matching one active order.
type Fill struct {
	Order *types.Order
	Price float64
	Qty   float64
}

// Match attempts to fill order against snap using model for slippage and
// probabilistic limit fills. It returns (Fill, true) on a fill, or
// (Fill{}, false) if the order does not fill this tick — which is not an
// error; the order simply remains Active for the next opportunity.
func Match(order *types.Order, snap types.Snapshot, model *latency.Model) (Fill, bool) {
	bid, hasBid := snap.BestBid()
	ask, hasAsk := snap.BestAsk()

	switch order.Type {
	case types.Market:
		var basePrice float64
		var haveSide bool
		if order.Side == types.Buy {
			basePrice, haveSide = ask.Price, hasAsk
		} else {
			basePrice, haveSide = bid.Price, hasBid
		}
		if !haveSide {
			// No snapshot for this side yet: deferred silently to the next
			// tick, exactly as the source engine's market-order branch does
			// when current_data has no entry for the symbol.
			return Fill{}, false
		}
		fillPrice := model.ApplySlippage(basePrice, order.Side)
		return Fill{Order: order, Price: fillPrice, Qty: order.Qty}, true

	case types.Limit:
		switch order.Side {
		case types.Buy:
			if !hasAsk || ask.Price > order.Price {
				return Fill{}, false
			}
			if !model.ShouldFillLimit() {
				return Fill{}, false
			}
			return Fill{Order: order, Price: min(order.Price, ask.Price), Qty: order.Qty}, true
		case types.Sell:
			if !hasBid || bid.Price < order.Price {
				return Fill{}, false
			}
			if !model.ShouldFillLimit() {
				return Fill{}, false
			}
			return Fill{Order: order, Price: max(order.Price, bid.Price), Qty: order.Qty}, true
		}
	}

	return Fill{}, false
}
