// Package booking implements the seat state machine of a single route:
//
//	Empty --Book--> Booked
//	Booked --Cancel--> Empty
//
// Each successful call flips exactly one seat and moves the route's
// available counter by one in the same step.  A failed call leaves the
// route untouched.
package booking

import (
	"errors"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

var (
	// ErrInvalidSeat is returned for a seat number outside 1..SeatCapacity.
	ErrInvalidSeat = errors.New("invalid seat number")
	// ErrSoldOut is returned by Book when the route has no empty seat left.
	ErrSoldOut = errors.New("route is fully booked")
	// ErrAlreadyBooked is returned by Book for a seat that is taken.
	ErrAlreadyBooked = errors.New("seat already booked")
	// ErrNotBooked is returned by Cancel for a seat that is empty.
	ErrNotBooked = errors.New("seat not booked")
)

// ValidSeat reports whether seat is a 1-based seat number of a route.
func ValidSeat(seat int) bool { return seat >= 1 && seat <= model.SeatCapacity }

// Book marks seat as booked and returns the fare charged.  The sold-out
// check runs before the seat lookup.
func Book(r *model.Route, seat int) (float32, error) {
	if !ValidSeat(seat) {
		return 0, ErrInvalidSeat
	}
	if r.Available == 0 {
		return 0, ErrSoldOut
	}
	if r.Seats[seat-1] == model.SeatBooked {
		return 0, ErrAlreadyBooked
	}
	r.Seats[seat-1] = model.SeatBooked
	r.Available--
	return r.Fare, nil
}

// Cancel frees seat and returns the fare refunded.
func Cancel(r *model.Route, seat int) (float32, error) {
	if !ValidSeat(seat) {
		return 0, ErrInvalidSeat
	}
	if r.Seats[seat-1] == model.SeatEmpty {
		return 0, ErrNotBooked
	}
	r.Seats[seat-1] = model.SeatEmpty
	r.Available++
	return r.Fare, nil
}
