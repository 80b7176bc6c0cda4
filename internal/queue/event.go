// Package queue defines message payloads exchanged over the message broker.
package queue

// QueueName is the durable queue carrying booking events.
const QueueName = "booking.events"

// Event types carried in BookingEvent.Type.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a seat is booked or cancelled.  It
// contains enough information for downstream consumers to log or notify
// without reading the route store.
type BookingEvent struct {
	Type        string  `json:"type"`
	RouteID     int32   `json:"route_id"`
	RouteName   string  `json:"route_name"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Seat        int     `json:"seat"`
	Fare        float32 `json:"fare"`
	Available   int32   `json:"available"`
	OccurredAt  string  `json:"occurred_at"`
}
