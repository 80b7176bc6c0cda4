// Package store persists the whole route registry as a unit.  Two
// backends are provided: FileStore writes the historical buses.dat binary
// layout and MySQLStore keeps the same records in a table.  Both replace
// the previous state entirely on every Save.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// ErrCorruptStore is returned when persisted data cannot be a valid
// registry: short or oversized content, unknown seat values, bad fares
// or duplicate IDs.
var ErrCorruptStore = errors.New("corrupt store")

// ErrIO wraps failures of the underlying medium.  The in-memory registry
// is still valid when a Save fails with ErrIO; callers may retry.
var ErrIO = errors.New("store i/o failure")

// Store is implemented by every persistence backend.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, routes []model.Route) error
}

// Snapshot is the result of a Load.
type Snapshot struct {
	Routes  []model.Route
	Repairs []Repair
}

// Repair records a route whose stored available count disagreed with its
// seat matrix.  Routes in the snapshot already carry the recomputed value.
type Repair struct {
	RouteID int32
	Stored  int32
	Actual  int32
}

func (r Repair) String() string {
	return fmt.Sprintf("route %d: stored available=%d, seat matrix has %d empty", r.RouteID, r.Stored, r.Actual)
}

// validate applies the checks shared by every backend to freshly loaded
// routes and fixes up stale available counters.
func validate(routes []model.Route) (Snapshot, error) {
	if len(routes) > model.MaxRoutes {
		return Snapshot{}, fmt.Errorf("%w: %d routes exceeds limit %d", ErrCorruptStore, len(routes), model.MaxRoutes)
	}
	seen := make(map[int32]struct{}, len(routes))
	var repairs []Repair
	for i := range routes {
		r := &routes[i]
		if _, dup := seen[r.ID]; dup {
			return Snapshot{}, fmt.Errorf("%w: duplicate route id %d", ErrCorruptStore, r.ID)
		}
		seen[r.ID] = struct{}{}
		if !model.ValidFare(r.Fare) {
			return Snapshot{}, fmt.Errorf("%w: route %d has fare %v", ErrCorruptStore, r.ID, r.Fare)
		}
		for n, s := range r.Seats {
			if !s.Valid() {
				return Snapshot{}, fmt.Errorf("%w: route %d seat %d has status %d", ErrCorruptStore, r.ID, n+1, s)
			}
		}
		if actual := r.CountEmpty(); actual != r.Available {
			repairs = append(repairs, Repair{RouteID: r.ID, Stored: r.Available, Actual: actual})
			r.Available = actual
		}
	}
	return Snapshot{Routes: routes, Repairs: repairs}, nil
}
