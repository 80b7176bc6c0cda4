package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/service"
)

// Health returns a health-check endpoint for load balancers and
// monitoring.  It reports 200 with the number of loaded routes; the
// service only starts serving after the store has been loaded.
func Health(svc *service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status": "ok",
			"routes": len(svc.Routes()),
		})
	}
}
