package model

import (
	"math"
	"strings"
	"testing"
)

func TestClampText(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Volvo-900", "Volvo-900"},
		{"exact", long[:MaxTextLen], long[:MaxTextLen]},
		{"long", long, long[:MaxTextLen]},
		// 48 ASCII bytes then a 2-byte rune straddling the limit
		{"utf8 boundary", strings.Repeat("b", 48) + "é" + "x", strings.Repeat("b", 48)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampText(tt.in); got != tt.want {
				t.Fatalf("ClampText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidFare(t *testing.T) {
	tests := []struct {
		fare float32
		want bool
	}{
		{0, true},
		{500, true},
		{-1, false},
		{float32(math.NaN()), false},
		{float32(math.Inf(1)), false},
	}
	for _, tt := range tests {
		if got := ValidFare(tt.fare); got != tt.want {
			t.Errorf("ValidFare(%v) = %v, want %v", tt.fare, got, tt.want)
		}
	}
}

func TestNewRouteAndCheck(t *testing.T) {
	r := NewRoute(1001, "Volvo-900", "Dhaka", "Sylhet", 500)
	if r.Available != SeatCapacity || r.CountEmpty() != SeatCapacity {
		t.Fatalf("new route available = %d, empty = %d", r.Available, r.CountEmpty())
	}
	if err := r.Check(); err != nil {
		t.Fatalf("Check on new route: %v", err)
	}

	r.Seats[4] = SeatBooked
	if err := r.Check(); err == nil {
		t.Fatal("Check accepted stale available count")
	}
	r.Available--
	if err := r.Check(); err != nil {
		t.Fatalf("Check after consistent update: %v", err)
	}
	if r.SeatAt(5) != SeatBooked {
		t.Fatalf("SeatAt(5) = %d, want booked", r.SeatAt(5))
	}

	r.Seats[0] = 7
	if err := r.Check(); err == nil {
		t.Fatal("Check accepted unknown seat status")
	}
}
