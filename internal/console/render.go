package console

import (
	"fmt"
	"io"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

const seatsPerRow = 4

// RenderRoutes prints the route table, or a notice when there is none.
func RenderRoutes(w io.Writer, routes []model.Route) {
	if len(routes) == 0 {
		fmt.Fprintln(w, "No buses available currently.")
		return
	}
	fmt.Fprintf(w, "\n%-10s %-20s %-15s %-15s %-10s %-10s\n", "Bus ID", "Name", "Source", "Dest", "Fare", "Seats Left")
	fmt.Fprintln(w, "-------------------------------------------------------------------------------------")
	for _, r := range routes {
		fmt.Fprintf(w, "%-10d %-20s %-15s %-15s %-10.2f %-10d\n",
			r.ID, r.Name, r.Origin, r.Destination, r.Fare, r.Available)
	}
}

// RenderSeatMap prints the seat grid of r: the seat number for an empty
// seat, XX for a booked one, four seats per row.
func RenderSeatMap(w io.Writer, r model.Route) {
	fmt.Fprintf(w, "\n--- Seat Map for %s (ID: %d) ---\n", r.Name, r.ID)
	fmt.Fprint(w, "(XX = Booked)\n\n")
	for i, s := range r.Seats {
		if s == model.SeatEmpty {
			fmt.Fprintf(w, "[ %02d ] ", i+1)
		} else {
			fmt.Fprint(w, "[ XX ] ")
		}
		if (i+1)%seatsPerRow == 0 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}
