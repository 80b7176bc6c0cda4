// Package service coordinates the route registry, the booking rules, the
// store and the event publisher.  Every operation runs under one mutex so
// the console and the HTTP API can share a Service, and every save sees
// exactly the state produced by the mutation that triggered it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/booking"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/registry"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
)

// Publisher delivers booking events.  *queue.Publisher implements it.
type Publisher interface {
	PublishBooking(ctx context.Context, ev queue.BookingEvent) error
}

// Recorder receives operation metrics.  *metrics.Collector implements it.
type Recorder interface {
	BookingInc(fare float32)
	CancellationInc()
	RejectionInc(op, reason string)
	PersistErrorInc()
	SetInventory(routes, available int)
}

// Receipt describes a completed booking or cancellation.  Amount is the
// fare charged or refunded.
type Receipt struct {
	RouteID   int32   `json:"route_id"`
	RouteName string  `json:"route_name"`
	Seat      int     `json:"seat"`
	Amount    float32 `json:"amount"`
	Available int32   `json:"available"`
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher enables booking events.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }

// WithRecorder enables metrics.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.rec = r } }

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service is the single owner of the route registry.
type Service struct {
	mu    sync.Mutex
	reg   *registry.Registry
	store store.Store
	pub   Publisher
	rec   Recorder
	now   func() time.Time
}

// New returns a Service persisting through st.  Call Open before use to
// hydrate the registry.
func New(st store.Store, opts ...Option) *Service {
	if st == nil {
		panic("nil store passed to service.New")
	}
	s := &Service{reg: registry.New(), store: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open loads the store into the registry.  Routes whose available count
// disagreed with their seat matrix have been repaired by the store; each
// repair is logged and returned.
func (s *Service) Open(ctx context.Context) ([]store.Repair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Restore(snap.Routes); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorruptStore, err)
	}
	for _, r := range snap.Repairs {
		log.Printf("store: corrupt available count repaired: %s", r)
	}
	s.recordInventory()
	return snap.Repairs, nil
}

// AddRoute registers a route and flushes the store.  When the flush fails
// the route is kept and returned together with an error wrapping
// store.ErrIO.
func (s *Service) AddRoute(ctx context.Context, name, origin, destination string, fare float32) (model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.reg.Add(name, origin, destination, fare)
	if err != nil {
		s.reject("add", err)
		return model.Route{}, err
	}
	r, _ := s.reg.Find(id)
	route := *r
	s.recordInventory()
	return route, s.flush(ctx)
}

// Routes returns a snapshot of every route in registration order.
func (s *Service) Routes() []model.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.List()
}

// Route returns a snapshot of one route.
func (s *Service) Route(id int32) (model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.reg.Find(id)
	if err != nil {
		return model.Route{}, err
	}
	return *r, nil
}

// Book books seat on route id.  On a failed flush the booking stands and
// the receipt is returned with an error wrapping store.ErrIO.
func (s *Service) Book(ctx context.Context, id int32, seat int) (Receipt, error) {
	return s.transition(ctx, "book", id, seat, booking.Book)
}

// Cancel frees seat on route id and returns the refund receipt.  Flush
// failures behave as in Book.
func (s *Service) Cancel(ctx context.Context, id int32, seat int) (Receipt, error) {
	return s.transition(ctx, "cancel", id, seat, booking.Cancel)
}

func (s *Service) transition(ctx context.Context, op string, id int32, seat int, apply func(*model.Route, int) (float32, error)) (Receipt, error) {
	s.mu.Lock()
	r, err := s.reg.Find(id)
	if err != nil {
		s.reject(op, err)
		s.mu.Unlock()
		return Receipt{}, err
	}
	amount, err := apply(r, seat)
	if err != nil {
		s.reject(op, err)
		s.mu.Unlock()
		return Receipt{}, err
	}
	rc := Receipt{RouteID: r.ID, RouteName: r.Name, Seat: seat, Amount: amount, Available: r.Available}
	ev := queue.BookingEvent{
		Type:        queue.EventBookingConfirmed,
		RouteID:     r.ID,
		RouteName:   r.Name,
		Origin:      r.Origin,
		Destination: r.Destination,
		Seat:        seat,
		Fare:        amount,
		Available:   r.Available,
		OccurredAt:  s.now().UTC().Format(time.RFC3339),
	}
	if op == "cancel" {
		ev.Type = queue.EventBookingCancelled
	}
	if s.rec != nil {
		if op == "book" {
			s.rec.BookingInc(amount)
		} else {
			s.rec.CancellationInc()
		}
	}
	s.recordInventory()
	flushErr := s.flush(ctx)
	s.mu.Unlock()

	s.publish(ctx, ev)
	return rc, flushErr
}

// Reset removes every route and flushes the store.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.Reset()
	s.recordInventory()
	return s.flush(ctx)
}

// Flush writes the current registry to the store.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(ctx)
}

// flush must be called with s.mu held.
func (s *Service) flush(ctx context.Context) error {
	if err := s.store.Save(ctx, s.reg.List()); err != nil {
		log.Printf("store: save failed: %v", err)
		if s.rec != nil {
			s.rec.PersistErrorInc()
		}
		if !errors.Is(err, store.ErrIO) {
			err = fmt.Errorf("%w: %v", store.ErrIO, err)
		}
		return err
	}
	return nil
}

func (s *Service) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.pub.PublishBooking(pctx, ev); err != nil {
		log.Printf("events: publish %s for route %d seat %d failed: %v", ev.Type, ev.RouteID, ev.Seat, err)
	}
}

func (s *Service) reject(op string, err error) {
	if s.rec != nil {
		s.rec.RejectionInc(op, Reason(err))
	}
}

// recordInventory must be called with s.mu held.
func (s *Service) recordInventory() {
	if s.rec == nil {
		return
	}
	available := 0
	for _, r := range s.reg.List() {
		available += int(r.Available)
	}
	s.rec.SetInventory(s.reg.Len(), available)
}

// Reason maps a core error to a short machine-readable label.
func Reason(err error) string {
	switch {
	case errors.Is(err, registry.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, registry.ErrRouteNotFound):
		return "not_found"
	case errors.Is(err, registry.ErrInvalidFare):
		return "invalid_fare"
	case errors.Is(err, booking.ErrInvalidSeat):
		return "invalid_seat"
	case errors.Is(err, booking.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, booking.ErrAlreadyBooked):
		return "already_booked"
	case errors.Is(err, booking.ErrNotBooked):
		return "not_booked"
	case errors.Is(err, store.ErrCorruptStore):
		return "corrupt_store"
	case errors.Is(err, store.ErrIO):
		return "io_failure"
	default:
		return "unknown"
	}
}
