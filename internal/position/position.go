// Package position tracks per-symbol position size, average entry price,
// and realized/unrealized PnL. It is adapted from the teacher's inventory
// tracker, generalized from a YES/NO binary-outcome specialization to the
// single signed-quantity contract the original simulation engine models.
package position

import "replaysim/pkg/types"

// Position is one symbol's holdings and running PnL.
type Position struct {
	Symbol        string
	Size          float64 // positive long, negative short
	AvgPrice      float64 // weighted entry price; not meaningful when Size == 0 (0 before the first trade, the last entry price after a close)
	MarkPrice     float64 // last mid, used for unrealized PnL
	UnrealizedPnL float64
	RealizedPnL   float64
	Leverage      float64
}

// New returns a zero-sized position for symbol with leverage 1, matching
// the engine's construction-time defaults.
func New(symbol string) *Position {
	return &Position{Symbol: symbol, Leverage: 1}
}

// UpdateMarkPrice sets MarkPrice and recomputes UnrealizedPnL. Called by
// the engine every tick the market-state cache refreshes this symbol. A flat
// position always has UnrealizedPnL == 0, matching spec.md §3's
// "size==0 ⇒ unrealized_pnl==0" invariant.
func (p *Position) UpdateMarkPrice(price float64) {
	p.MarkPrice = price
	if p.Size != 0 {
		p.UnrealizedPnL = p.Size * (price - p.AvgPrice)
	} else {
		p.UnrealizedPnL = 0
	}
}

// AddTrade applies a fill of signedQty contracts at price. fee is charged
// against realized PnL only on a reducing, closing or flipping trade; an
// opening or increasing trade ignores it. signedQty is positive for a buy
// fill, negative for a sell fill. This implements the four cases from the original
// SimulationPosition.add_trade verbatim:
//
//  1. flat -> open: size = signedQty, avg_price = price.
//  2. same sign -> increase: weighted-average the entry price.
//  3. opposite sign, |signedQty| < |size| -> reduce: realize PnL on the
//     closed portion only, avg_price unchanged.
//  4. opposite sign, |signedQty| >= |size| -> close or flip: realize PnL on
//     the entire prior position; if the trade overshoots, the remainder
//     opens a new position at the fill price.
func (p *Position) AddTrade(signedQty, price, fee float64) {
	switch {
	case p.Size == 0:
		p.Size = signedQty
		p.AvgPrice = price

	case sameSign(p.Size, signedQty):
		totalValue := p.Size*p.AvgPrice + signedQty*price
		p.Size += signedQty
		p.AvgPrice = totalValue / p.Size

	case abs(signedQty) < abs(p.Size):
		p.RealizedPnL += (-signedQty)*(price-p.AvgPrice) - fee
		p.Size += signedQty

	default: // closing or flipping
		p.RealizedPnL += p.Size*(price-p.AvgPrice) - fee
		if abs(signedQty) > abs(p.Size) {
			p.Size = signedQty + p.Size
		} else {
			p.Size = 0
		}
		if p.Size != 0 {
			p.AvgPrice = price
		} else {
			p.UnrealizedPnL = 0
		}
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// View returns the facade's per-symbol position query shape.
func (p *Position) View() types.PositionView {
	return types.PositionView{
		Size:            p.Size,
		AvgEntryPrice:   p.AvgPrice,
		MarkPrice:       p.MarkPrice,
		Value:           abs(p.Size) * p.MarkPrice,
		Leverage:        p.Leverage,
		PositionBalance: abs(p.Size) * p.AvgPrice,
		UnrealizedPnL:   p.UnrealizedPnL,
		RealizedPnL:     p.RealizedPnL,
	}
}
