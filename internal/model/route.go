package model

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	SeatCapacity = 32   // seats per route
	MaxRoutes    = 50   // routes the registry can hold
	BaseID       = 1001 // first ID handed out by an empty registry
	MaxTextLen   = 49   // visible bytes of name/origin/destination
)

// SeatStatus is the state of one seat in a route's seat matrix.  The
// numeric values are the ones written to the store file.
type SeatStatus int32

const (
	SeatEmpty  SeatStatus = 0
	SeatBooked SeatStatus = 1
)

// Valid reports whether s is one of the two known statuses.
func (s SeatStatus) Valid() bool { return s == SeatEmpty || s == SeatBooked }

// Route represents a bus route and its seat matrix.  Route is a value
// type: copying it copies the seat matrix too, so a Route returned by
// value is a snapshot that later bookings do not touch.
//
// Fields:
//
//	ID          – assigned by the registry, immutable after creation.
//	Name        – display name of the bus (e.g. Volvo-900).
//	Origin      – departure city.
//	Destination – arrival city.
//	Fare        – price of one seat; also the refund on cancellation.
//	Seats       – seat matrix, index 0 is seat number 1.
//	Available   – cached count of empty seats in Seats.
type Route struct {
	ID          int32
	Name        string
	Origin      string
	Destination string
	Fare        float32
	Seats       [SeatCapacity]SeatStatus
	Available   int32
}

// NewRoute returns a route with every seat empty.  Text fields longer
// than MaxTextLen bytes are truncated.
func NewRoute(id int32, name, origin, destination string, fare float32) Route {
	return Route{
		ID:          id,
		Name:        ClampText(name),
		Origin:      ClampText(origin),
		Destination: ClampText(destination),
		Fare:        fare,
		Available:   SeatCapacity,
	}
}

// CountEmpty counts the empty seats in the matrix.
func (r *Route) CountEmpty() int32 {
	var n int32
	for _, s := range r.Seats {
		if s == SeatEmpty {
			n++
		}
	}
	return n
}

// SeatAt returns the status of a 1-based seat number.  The caller must
// have checked the range.
func (r *Route) SeatAt(seat int) SeatStatus { return r.Seats[seat-1] }

// Check verifies the seat matrix invariants: every status is known and
// the cached Available count matches the matrix.
func (r *Route) Check() error {
	for i, s := range r.Seats {
		if !s.Valid() {
			return fmt.Errorf("route %d seat %d: unknown status %d", r.ID, i+1, s)
		}
	}
	if n := r.CountEmpty(); n != r.Available {
		return fmt.Errorf("route %d: available count %d, matrix has %d empty seats", r.ID, r.Available, n)
	}
	return nil
}

// ValidFare reports whether f can be charged: finite and not negative.
func ValidFare(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ClampText cuts s to at most MaxTextLen bytes without splitting a
// UTF-8 sequence.
func ClampText(s string) string {
	if len(s) <= MaxTextLen {
		return s
	}
	cut := MaxTextLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
