package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/booking"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/registry"
	"github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
)

// ----- DTOs -----

type routeResp struct {
	ID          int32    `json:"id"`
	Name        string   `json:"name"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Fare        float32  `json:"fare"`
	Available   int32    `json:"available"`
	Seats       []string `json:"seats,omitempty"` // EMPTY | BOOKED, index 0 is seat 1
}

func toRouteResp(r model.Route, withSeats bool) routeResp {
	out := routeResp{
		ID:          r.ID,
		Name:        r.Name,
		Origin:      r.Origin,
		Destination: r.Destination,
		Fare:        r.Fare,
		Available:   r.Available,
	}
	if withSeats {
		out.Seats = make([]string, len(r.Seats))
		for i, s := range r.Seats {
			if s == model.SeatBooked {
				out.Seats[i] = "BOOKED"
			} else {
				out.Seats[i] = "EMPTY"
			}
		}
	}
	return out
}

// parseRouteID reads the :id path parameter.
func parseRouteID(c echo.Context) (int32, bool) {
	n, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int32(n), true
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidSeat), errors.Is(err, registry.ErrInvalidFare):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrSoldOut), errors.Is(err, booking.ErrAlreadyBooked),
		errors.Is(err, booking.ErrNotBooked), errors.Is(err, registry.ErrCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a core error as {"error": reason, "message": text}.
// Persist failures are reported as 500 and never include internal paths.
func writeError(c echo.Context, err error) error {
	if errors.Is(err, store.ErrIO) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "io_failure", "message": "change kept in memory but not saved"})
	}
	return c.JSON(statusFor(err), echo.Map{"error": service.Reason(err), "message": err.Error()})
}
