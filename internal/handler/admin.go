package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// AdminHandler bundles the dependencies of the admin endpoints.
type AdminHandler struct {
	Svc       *service.Service
	AdminHash string        // bcrypt hash of the admin password
	JWTSecret string        // signs admin access tokens
	TokenTTL  time.Duration // admin token lifetime
}

func NewAdminHandler(svc *service.Service, adminHash, jwtSecret string, ttl time.Duration) *AdminHandler {
	if svc == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Svc: svc, AdminHash: adminHash, JWTSecret: jwtSecret, TokenTTL: ttl}
}

type loginReq struct {
	Password string `json:"password"`
}

type addRouteReq struct {
	Name        string   `json:"name"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Fare        *float32 `json:"fare"`
}

// Login: verify the shared admin password and return an ADMIN token.
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if !utils.VerifyPassword(h.AdminHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := utils.NewAccessToken(h.JWTSecret, "admin", utils.RoleAdmin, h.TokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":   access.Token,
		"expires": access.Exp,
	})
}

// AddRoute handles POST /v1/admin/routes.  Name, origin and destination
// are required; text longer than 49 bytes is truncated.
func (h *AdminHandler) AddRoute(c echo.Context) error {
	var req addRouteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Name == "" || req.Origin == "" || req.Destination == "" || req.Fare == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, origin, destination and fare are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	r, err := h.Svc.AddRoute(ctx, req.Name, req.Origin, req.Destination, *req.Fare)
	if err != nil && !errors.Is(err, store.ErrIO) {
		return writeError(c, err)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "io_failure",
			"message": "change kept in memory but not saved",
			"route":   toRouteResp(r, false),
		})
	}
	return c.JSON(http.StatusCreated, toRouteResp(r, false))
}

// Reset handles POST /v1/admin/reset and deletes every route.
func (h *AdminHandler) Reset(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Svc.Reset(ctx); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
