package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

func sampleRoutes(n int) []model.Route {
	out := make([]model.Route, n)
	for i := range out {
		out[i] = model.NewRoute(int32(model.BaseID+i), fmt.Sprintf("Volvo-%d", i), "Dhaka", "Sylhet", float32(100+i)+0.5)
		if i%2 == 0 {
			out[i].Seats[i%model.SeatCapacity] = model.SeatBooked
			out[i].Available--
		}
	}
	return out
}

func TestRecordLayout(t *testing.T) {
	if RecordSize != 292 {
		t.Fatalf("RecordSize = %d, want 292", RecordSize)
	}
	r := model.NewRoute(1001, "Volvo-900", "Dhaka", "Sylhet", 500)
	r.Seats[2] = model.SeatBooked
	r.Available = 31
	b := Encode([]model.Route{r})

	if len(b) != 4+292 {
		t.Fatalf("len = %d", len(b))
	}
	le := binary.LittleEndian
	if got := le.Uint32(b[0:]); got != 1 {
		t.Fatalf("count = %d", got)
	}
	rec := b[4:]
	if got := le.Uint32(rec[0:]); got != 1001 {
		t.Fatalf("id = %d", got)
	}
	if got := string(rec[4:13]); got != "Volvo-900" || rec[13] != 0 {
		t.Fatalf("name field = %q", rec[4:14])
	}
	if got := string(rec[54:59]); got != "Dhaka" {
		t.Fatalf("origin field = %q", got)
	}
	if got := string(rec[104:110]); got != "Sylhet" {
		t.Fatalf("destination field = %q", got)
	}
	if got := math.Float32frombits(le.Uint32(rec[156:])); got != 500 {
		t.Fatalf("fare = %v", got)
	}
	if got := le.Uint32(rec[160+4*2:]); got != 1 {
		t.Fatalf("seat 3 = %d", got)
	}
	if got := le.Uint32(rec[288:]); got != 31 {
		t.Fatalf("available = %d", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 7, model.MaxRoutes} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			in := sampleRoutes(n)
			snap, err := Decode(Encode(in))
			if err != nil {
				t.Fatal(err)
			}
			if len(snap.Repairs) != 0 {
				t.Fatalf("unexpected repairs %v", snap.Repairs)
			}
			if len(snap.Routes) != n {
				t.Fatalf("got %d routes", len(snap.Routes))
			}
			for i := range in {
				if snap.Routes[i] != in[i] {
					t.Fatalf("route %d: got %+v, want %+v", i, snap.Routes[i], in[i])
				}
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	valid := Encode(sampleRoutes(2))
	withSeat := func(v uint32) []byte {
		b := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(b[4+160:], v)
		return b
	}
	withFare := func(f float32) []byte {
		b := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(b[4+156:], math.Float32bits(f))
		return b
	}
	dupID := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(dupID[4+RecordSize:], model.BaseID)
	badCount := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badCount[0:], 51)
	negCount := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(negCount[0:], math.MaxUint32)

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", valid[:3]},
		{"truncated record", valid[:len(valid)-10]},
		{"trailing bytes", append(append([]byte(nil), valid...), 0, 0)},
		{"count over limit", badCount},
		{"negative count", negCount},
		{"unknown seat status", withSeat(2)},
		{"negative fare", withFare(-1)},
		{"nan fare", withFare(float32(math.NaN()))},
		{"duplicate id", dupID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, ErrCorruptStore) {
				t.Fatalf("err = %v, want ErrCorruptStore", err)
			}
		})
	}
}

func TestDecodeRepairsAvailable(t *testing.T) {
	routes := sampleRoutes(2)
	routes[1].Available = 3
	snap, err := Decode(Encode(routes))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Repairs) != 1 {
		t.Fatalf("repairs = %v", snap.Repairs)
	}
	rep := snap.Repairs[0]
	if rep.RouteID != routes[1].ID || rep.Stored != 3 || rep.Actual != model.SeatCapacity {
		t.Fatalf("repair = %+v", rep)
	}
	if snap.Routes[1].Available != model.SeatCapacity {
		t.Fatalf("available not recomputed: %d", snap.Routes[1].Available)
	}
}

func TestLongTextTruncated(t *testing.T) {
	r := model.NewRoute(1001, "", "", "", 1)
	r.Name = "0123456789012345678901234567890123456789012345678901234567890"
	snap, err := Decode(Encode([]model.Route{r}))
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Routes[0].Name; len(got) != model.MaxTextLen {
		t.Fatalf("name length %d", len(got))
	}
}
