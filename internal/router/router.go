package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and, when metrics is non-nil, the Prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo, svc *service.Service, metrics http.Handler) {
	e.GET("/healthz", handler.Health(svc))
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterReservation registers the public booking endpoints.  limiter is
// applied to the whole group; pass a pass-through when rate limiting is off.
func RegisterReservation(e *echo.Echo, h *handler.ReservationHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/routes", limiter)
	g.GET("", h.ListRoutes)
	g.GET("/:id", h.GetRoute)
	g.POST("/:id/bookings", h.Book)
	g.DELETE("/:id/bookings/:seat", h.Cancel)
}

// RegisterAdmin registers the admin login and the route management
// endpoints.  Login is open; everything else requires an ADMIN token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/v1/admin/login", a.Login, limiter)

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.POST("/routes", a.AddRoute)
	g.POST("/reset", a.Reset)
}
