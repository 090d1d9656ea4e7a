// Package feed defines the boundary between the simulator and whatever
// supplies historical order-book data. The simulator never reads a file or
// a database directly; it asks a Source for an ordered slice of snapshots.
package feed

import "replaysim/pkg/types"

// Source loads an ordered stream of book snapshots for one symbol within a
// half-open time range. Implementations must return snapshots sorted by
// Ts ascending; the clock does not sort or deduplicate what it receives.
type Source interface {
	Load(symbol string, start, end types.Timestamp, depth int) ([]types.Snapshot, error)
}
