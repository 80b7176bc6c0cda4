// Package registry holds the in-memory collection of bus routes.  The
// registry owns every route and its seat matrix; callers receive either a
// pointer for an in-place mutation (Find) or copies (List).
package registry

import (
	"errors"
	"fmt"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// ErrCapacityExceeded is returned by Add when the registry already holds
// model.MaxRoutes routes.
var ErrCapacityExceeded = errors.New("route capacity exceeded")

// ErrRouteNotFound is returned when no route carries the requested ID.
var ErrRouteNotFound = errors.New("route not found")

// ErrInvalidFare is returned by Add for a negative or non-finite fare.
var ErrInvalidFare = errors.New("invalid fare")

// Registry is an ordered, bounded sequence of routes.  It is not safe
// for concurrent use; the reservation service serializes access.
type Registry struct {
	routes []model.Route
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{routes: make([]model.Route, 0, model.MaxRoutes)}
}

// Len returns the number of registered routes.
func (r *Registry) Len() int { return len(r.routes) }

// Add registers a new route with every seat empty and returns its ID.
// IDs are derived from the current size, so numbering restarts at
// model.BaseID after a Reset.
func (r *Registry) Add(name, origin, destination string, fare float32) (int32, error) {
	if len(r.routes) >= model.MaxRoutes {
		return 0, ErrCapacityExceeded
	}
	if !model.ValidFare(fare) {
		return 0, ErrInvalidFare
	}
	id := int32(model.BaseID + len(r.routes))
	r.routes = append(r.routes, model.NewRoute(id, name, origin, destination, fare))
	return id, nil
}

// Find returns the route with the given ID.  The pointer is only valid
// until the next Add, Reset or Restore.
func (r *Registry) Find(id int32) (*model.Route, error) {
	for i := range r.routes {
		if r.routes[i].ID == id {
			return &r.routes[i], nil
		}
	}
	return nil, ErrRouteNotFound
}

// List returns a copy of every route in registration order.
func (r *Registry) List() []model.Route {
	out := make([]model.Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Reset drops every route.
func (r *Registry) Reset() {
	r.routes = r.routes[:0]
}

// Restore replaces the registry content with routes loaded from a store.
// The registry is left untouched when the routes break its capacity or
// uniqueness rules.
func (r *Registry) Restore(routes []model.Route) error {
	if len(routes) > model.MaxRoutes {
		return fmt.Errorf("%w: %d routes, limit %d", ErrCapacityExceeded, len(routes), model.MaxRoutes)
	}
	seen := make(map[int32]struct{}, len(routes))
	for _, rt := range routes {
		if _, dup := seen[rt.ID]; dup {
			return fmt.Errorf("duplicate route id %d", rt.ID)
		}
		seen[rt.ID] = struct{}{}
	}
	r.routes = append(r.routes[:0], routes...)
	return nil
}
