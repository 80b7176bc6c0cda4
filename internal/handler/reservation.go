package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
)

// ReservationHandler exposes route browsing, booking and cancellation.
// These endpoints are public; they sit behind the rate limiter only.
type ReservationHandler struct {
	Svc *service.Service
}

// NewReservationHandler panics if svc is nil.
func NewReservationHandler(svc *service.Service) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

// ListRoutes handles GET /v1/routes and returns every route in
// registration order without seat detail.
func (h *ReservationHandler) ListRoutes(c echo.Context) error {
	routes := h.Svc.Routes()
	out := make([]routeResp, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResp(r, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": out})
}

// GetRoute handles GET /v1/routes/:id and includes the seat map.
func (h *ReservationHandler) GetRoute(c echo.Context) error {
	id, ok := parseRouteID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	r, err := h.Svc.Route(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRouteResp(r, true))
}

// Book handles POST /v1/routes/:id/bookings with body {"seat": n}.  It
// returns 201 with the receipt.  When the booking succeeded but could not
// be saved, 500 is returned together with the receipt since the seat is
// held in memory.
func (h *ReservationHandler) Book(c echo.Context) error {
	id, ok := parseRouteID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var body struct {
		Seat *int `json:"seat"`
	}
	if err := c.Bind(&body); err != nil || body.Seat == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is required"})
	}
	rc, err := h.Svc.Book(c.Request().Context(), id, *body.Seat)
	return h.receipt(c, http.StatusCreated, rc, err)
}

// Cancel handles DELETE /v1/routes/:id/bookings/:seat and returns the
// refund receipt.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := parseRouteID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat number"})
	}
	rc, err := h.Svc.Cancel(c.Request().Context(), id, seat)
	return h.receipt(c, http.StatusOK, rc, err)
}

func (h *ReservationHandler) receipt(c echo.Context, okStatus int, rc service.Receipt, err error) error {
	switch {
	case err == nil:
		return c.JSON(okStatus, rc)
	case errors.Is(err, store.ErrIO):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "io_failure",
			"message": "change kept in memory but not saved",
			"receipt": rc,
		})
	default:
		return writeError(c, err)
	}
}
