package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// Record layout of one route, matching the C struct the store files were
// first written with (little-endian, 4-byte aligned):
//
//	[0:4]     int32   id
//	[4:54]    char    name[50]
//	[54:104]  char    origin[50]
//	[104:154] char    destination[50]
//	[154:156]         padding
//	[156:160] float32 fare
//	[160:288] int32   seats[32]
//	[288:292] int32   available
const (
	headerSize = 4
	textSize   = model.MaxTextLen + 1
	offID      = 0
	offName    = 4
	offOrigin  = offName + textSize
	offDest    = offOrigin + textSize
	offFare    = 156
	offSeats   = 160
	offAvail   = offSeats + 4*model.SeatCapacity
	RecordSize = offAvail + 4
)

var le = binary.LittleEndian

// Encode serializes routes as a record count followed by one fixed-size
// record per route, in order.
func Encode(routes []model.Route) []byte {
	out := make([]byte, headerSize+len(routes)*RecordSize)
	le.PutUint32(out[0:headerSize], uint32(int32(len(routes))))
	for i := range routes {
		encodeRecord(out[headerSize+i*RecordSize:headerSize+(i+1)*RecordSize], &routes[i])
	}
	return out
}

func encodeRecord(b []byte, r *model.Route) {
	le.PutUint32(b[offID:], uint32(r.ID))
	putText(b[offName:offName+textSize], r.Name)
	putText(b[offOrigin:offOrigin+textSize], r.Origin)
	putText(b[offDest:offDest+textSize], r.Destination)
	le.PutUint32(b[offFare:], math.Float32bits(r.Fare))
	for i, s := range r.Seats {
		le.PutUint32(b[offSeats+4*i:], uint32(s))
	}
	le.PutUint32(b[offAvail:], uint32(r.Available))
}

// putText copies s into a zeroed fixed-width field, always leaving room
// for the terminating NUL.
func putText(dst []byte, s string) {
	copy(dst[:len(dst)-1], model.ClampText(s))
}

// Decode parses data produced by Encode (or by the legacy C tool)
// and validates it.  A payload whose length does not match the declared
// record count is rejected with ErrCorruptStore.
func Decode(data []byte) (Snapshot, error) {
	if len(data) < headerSize {
		return Snapshot{}, fmt.Errorf("%w: %d byte header, want %d", ErrCorruptStore, len(data), headerSize)
	}
	count := int32(le.Uint32(data[0:headerSize]))
	if count < 0 || count > model.MaxRoutes {
		return Snapshot{}, fmt.Errorf("%w: record count %d", ErrCorruptStore, count)
	}
	want := headerSize + int(count)*RecordSize
	if len(data) != want {
		return Snapshot{}, fmt.Errorf("%w: %d records need %d bytes, have %d", ErrCorruptStore, count, want, len(data))
	}
	routes := make([]model.Route, count)
	for i := range routes {
		decodeRecord(data[headerSize+i*RecordSize:headerSize+(i+1)*RecordSize], &routes[i])
	}
	return validate(routes)
}

func decodeRecord(b []byte, r *model.Route) {
	r.ID = int32(le.Uint32(b[offID:]))
	r.Name = getText(b[offName : offName+textSize])
	r.Origin = getText(b[offOrigin : offOrigin+textSize])
	r.Destination = getText(b[offDest : offDest+textSize])
	r.Fare = math.Float32frombits(le.Uint32(b[offFare:]))
	for i := range r.Seats {
		r.Seats[i] = model.SeatStatus(int32(le.Uint32(b[offSeats+4*i:])))
	}
	r.Available = int32(le.Uint32(b[offAvail:]))
}

// getText reads a NUL-terminated field.  A field without terminator is
// read up to its width.
func getText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
