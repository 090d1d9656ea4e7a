// Package pipeline owns an order's lifecycle between placement and
// matching: a pending queue for orders still waiting out their submission
// latency, and an active set eligible for the matching engine. The
// pipeline is the sole owner of every order it holds — callers refer to
// orders only by id, never by a retained pointer.
package pipeline

import "replaysim/pkg/types"

// Pipeline holds every order that has been placed but not yet reached a
// terminal state (Filled or Cancelled).
type Pipeline struct {
	pending []*types.Order
	active  map[string]*types.Order
	order   []string // active order ids in insertion order, for deterministic match iteration
}

// New returns an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{active: make(map[string]*types.Order)}
}

// Place appends a new Pending order. The caller is responsible for setting
// every field except Status, which Place forces to StatusPending.
func (p *Pipeline) Place(o *types.Order) {
	o.Status = types.StatusPending
	p.pending = append(p.pending, o)
}

// Promote moves every Pending order whose ExecutionTime <= now into Active,
// in submission order, matching spec.md's ordering guarantee.
func (p *Pipeline) Promote(now types.Timestamp) {
	remaining := p.pending[:0]
	for _, o := range p.pending {
		if o.ExecutionTime <= now {
			o.Status = types.StatusActive
			p.active[o.ID] = o
			p.order = append(p.order, o.ID)
		} else {
			remaining = append(remaining, o)
		}
	}
	p.pending = remaining
}

// Active returns the active orders in insertion order. The returned slice
// aliases live orders — the matching engine is expected to mutate them in
// place before handing them back to Remove/Cancel.
func (p *Pipeline) Active() []*types.Order {
	out := make([]*types.Order, 0, len(p.order))
	for _, id := range p.order {
		if o, ok := p.active[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Remove drops id from the active set, e.g. once it has filled. It is a
// no-op if id is not active.
func (p *Pipeline) Remove(id string) {
	delete(p.active, id)
	p.compactOrder()
}

// Cancel removes id from the active set only — never from pending. This
// preserves the original engine's cancel_order bug, where a Pending order
// can still promote and match after being "cancelled", since the source
// never scans the pending list. Returns true if an active order was
// removed, false otherwise (unknown id or still-Pending id).
func (p *Pipeline) Cancel(id string) bool {
	if _, ok := p.active[id]; !ok {
		return false
	}
	delete(p.active, id)
	p.compactOrder()
	return true
}

// CancelAll cancels every active order for symbol and returns their ids.
// Like Cancel, it never touches the pending queue.
func (p *Pipeline) CancelAll(symbol string) []string {
	var cancelled []string
	for _, id := range p.order {
		o, ok := p.active[id]
		if !ok || o.Symbol != symbol {
			continue
		}
		cancelled = append(cancelled, id)
		delete(p.active, id)
	}
	p.compactOrder()
	return cancelled
}

func (p *Pipeline) compactOrder() {
	live := p.order[:0]
	for _, id := range p.order {
		if _, ok := p.active[id]; ok {
			live = append(live, id)
		}
	}
	p.order = live
}

// PendingCount and ActiveCount are diagnostic helpers for stats reporting.
func (p *Pipeline) PendingCount() int { return len(p.pending) }
func (p *Pipeline) ActiveCount() int  { return len(p.active) }
