package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/booking"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/registry"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
)

// memStore keeps the last saved routes and can be told to fail.
type memStore struct {
	snap    store.Snapshot
	loadErr error
	saveErr error
	saved   []model.Route
	saves   int
}

func (m *memStore) Load(context.Context) (store.Snapshot, error) { return m.snap, m.loadErr }

func (m *memStore) Save(_ context.Context, routes []model.Route) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = routes
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *fakePublisher) PublishBooking(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fakeRecorder struct {
	bookings, cancels, persistErrs int
	revenue                        float32
	rejections                     []string
	routes, available              int
}

func (r *fakeRecorder) BookingInc(f float32)        { r.bookings++; r.revenue += f }
func (r *fakeRecorder) CancellationInc()            { r.cancels++ }
func (r *fakeRecorder) RejectionInc(op, why string) { r.rejections = append(r.rejections, op+":"+why) }
func (r *fakeRecorder) PersistErrorInc()            { r.persistErrs++ }
func (r *fakeRecorder) SetInventory(n, a int)       { r.routes, r.available = n, a }

func open(t *testing.T, st *memStore, opts ...Option) *Service {
	t.Helper()
	svc := New(st, opts...)
	if _, err := svc.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestBookingFlowPersists(t *testing.T) {
	ctx := context.Background()
	st := &memStore{}
	svc := open(t, st)

	r, err := svc.AddRoute(ctx, "Volvo-900", "Dhaka", "Sylhet", 500)
	if err != nil {
		t.Fatal(err)
	}
	if r.ID != model.BaseID || len(st.saved) != 1 {
		t.Fatalf("route %d, saved %d", r.ID, len(st.saved))
	}

	rc, err := svc.Book(ctx, r.ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Amount != 500 || rc.Available != 31 || rc.RouteName != "Volvo-900" {
		t.Fatalf("receipt %+v", rc)
	}
	if st.saved[0].Seats[4] != model.SeatBooked {
		t.Fatal("booking not flushed")
	}

	if _, err := svc.Book(ctx, r.ID, 5); !errors.Is(err, booking.ErrAlreadyBooked) {
		t.Fatalf("err = %v", err)
	}
	rc, err = svc.Cancel(ctx, r.ID, 5)
	if err != nil || rc.Amount != 500 || rc.Available != 32 {
		t.Fatalf("cancel %+v, %v", rc, err)
	}
	if _, err := svc.Cancel(ctx, 9999, 1); !errors.Is(err, registry.ErrRouteNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestRejectedOperationsDoNotFlush(t *testing.T) {
	ctx := context.Background()
	st := &memStore{}
	svc := open(t, st)
	r, _ := svc.AddRoute(ctx, "x", "a", "b", 1)
	before := st.saves

	svc.Book(ctx, r.ID, 0)
	svc.Cancel(ctx, r.ID, 3)
	svc.AddRoute(ctx, "bad", "a", "b", -2)
	if st.saves != before {
		t.Fatalf("rejected operations flushed %d times", st.saves-before)
	}
}

func TestFlushFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	st := &memStore{}
	rec := &fakeRecorder{}
	svc := open(t, st, WithRecorder(rec))
	r, _ := svc.AddRoute(ctx, "Volvo", "a", "b", 250)

	st.saveErr = errors.New("disk full")
	rc, err := svc.Book(ctx, r.ID, 1)
	if !errors.Is(err, store.ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
	if rc.Amount != 250 || rc.Seat != 1 {
		t.Fatalf("receipt lost on flush failure: %+v", rc)
	}
	got, _ := svc.Route(r.ID)
	if got.Seats[0] != model.SeatBooked || got.Available != 31 {
		t.Fatal("booking rolled back after flush failure")
	}
	if rec.persistErrs != 1 {
		t.Fatalf("persist errors = %d", rec.persistErrs)
	}

	// the next successful flush carries the kept booking
	st.saveErr = nil
	if err := svc.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if st.saved[0].Available != 31 {
		t.Fatalf("flushed available = %d", st.saved[0].Available)
	}
}

func TestOpenRestoresAndReportsRepairs(t *testing.T) {
	r := model.NewRoute(1001, "a", "b", "c", 10)
	r.Seats[0] = model.SeatBooked
	r.Available = 31
	st := &memStore{snap: store.Snapshot{
		Routes:  []model.Route{r},
		Repairs: []store.Repair{{RouteID: 1001, Stored: 30, Actual: 31}},
	}}
	svc := New(st)
	repairs, err := svc.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(repairs) != 1 {
		t.Fatalf("repairs = %v", repairs)
	}
	if got, _ := svc.Route(1001); got.Available != 31 {
		t.Fatalf("available = %d", got.Available)
	}
	// next id follows the restored count
	added, _ := svc.AddRoute(context.Background(), "n", "o", "d", 1)
	if added.ID != 1002 {
		t.Fatalf("id = %d", added.ID)
	}
}

func TestOpenFailures(t *testing.T) {
	st := &memStore{loadErr: store.ErrCorruptStore}
	if _, err := New(st).Open(context.Background()); !errors.Is(err, store.ErrCorruptStore) {
		t.Fatalf("err = %v", err)
	}

	dup := model.NewRoute(5, "", "", "", 1)
	st = &memStore{snap: store.Snapshot{Routes: []model.Route{dup, dup}}}
	if _, err := New(st).Open(context.Background()); !errors.Is(err, store.ErrCorruptStore) {
		t.Fatalf("err = %v", err)
	}
}

func TestResetRestartsIDs(t *testing.T) {
	ctx := context.Background()
	st := &memStore{}
	svc := open(t, st)
	svc.AddRoute(ctx, "a", "", "", 1)
	svc.AddRoute(ctx, "b", "", "", 1)
	if err := svc.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if len(st.saved) != 0 || len(svc.Routes()) != 0 {
		t.Fatal("reset did not clear routes")
	}
	r, _ := svc.AddRoute(ctx, "c", "", "", 1)
	if r.ID != model.BaseID {
		t.Fatalf("id = %d", r.ID)
	}
}

func TestEventsAndMetrics(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	rec := &fakeRecorder{}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := open(t, &memStore{}, WithPublisher(pub), WithRecorder(rec), WithClock(func() time.Time { return at }))

	r, _ := svc.AddRoute(ctx, "Volvo", "Dhaka", "Sylhet", 500)
	if _, err := svc.Book(ctx, r.ID, 3); err != nil {
		t.Fatalf("publish failure leaked into booking: %v", err)
	}
	svc.Cancel(ctx, r.ID, 3)
	svc.Book(ctx, r.ID, 40)

	if len(pub.events) != 2 {
		t.Fatalf("events = %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != queue.EventBookingConfirmed || ev.Seat != 3 || ev.Available != 31 || ev.OccurredAt != "2026-01-02T03:04:05Z" {
		t.Fatalf("event %+v", ev)
	}
	if pub.events[1].Type != queue.EventBookingCancelled {
		t.Fatalf("event %+v", pub.events[1])
	}

	if rec.bookings != 1 || rec.cancels != 1 || rec.revenue != 500 {
		t.Fatalf("recorder %+v", rec)
	}
	if len(rec.rejections) != 1 || rec.rejections[0] != "book:invalid_seat" {
		t.Fatalf("rejections %v", rec.rejections)
	}
	if rec.routes != 1 || rec.available != 32 {
		t.Fatalf("inventory %d/%d", rec.routes, rec.available)
	}
}

func TestConcurrentBookingsOneWinner(t *testing.T) {
	ctx := context.Background()
	svc := open(t, &memStore{})
	r, _ := svc.AddRoute(ctx, "Volvo", "a", "b", 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Book(ctx, r.ID, 7); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("%d goroutines booked the same seat", wins)
	}
	if got, _ := svc.Route(r.ID); got.Available != 31 {
		t.Fatalf("available = %d", got.Available)
	}
}

func TestReason(t *testing.T) {
	tests := map[error]string{
		registry.ErrCapacityExceeded: "capacity_exceeded",
		booking.ErrSoldOut:           "sold_out",
		store.ErrIO:                  "io_failure",
		errors.New("other"):          "unknown",
	}
	for err, want := range tests {
		if got := Reason(err); got != want {
			t.Errorf("Reason(%v) = %q, want %q", err, got, want)
		}
	}
}
