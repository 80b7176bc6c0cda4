package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func serve(mw []echo.MiddlewareFunc, header string) int {
	e := echo.New()
	e.GET("/x", ok, mw...)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestJWTAndRole(t *testing.T) {
	const secret = "k"
	admin, _ := utils.NewAccessToken(secret, "admin", utils.RoleAdmin, time.Minute)
	user, _ := utils.NewAccessToken(secret, "u", "USER", time.Minute)
	chain := []echo.MiddlewareFunc{JWTAuth(secret), RequireRole(utils.RoleAdmin)}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + user.Token, http.StatusForbidden},
		{"admin", "Bearer " + admin.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serve(chain, tt.header); got != tt.want {
				t.Fatalf("status %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTokenBucketPassThroughWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	mw := NewTokenBucket(cfg, nil)
	for i := 0; i < 3; i++ {
		if got := serve([]echo.MiddlewareFunc{mw}, ""); got != http.StatusOK {
			t.Fatalf("request %d status %d", i, got)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes/1001/bookings", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/routes/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1001")

	tests := map[string]string{
		"ip":               "rl:ip:10.0.0.1",
		"route":            "rl:route:POST /v1/routes/:id/bookings",
		"subject":          "rl:sub:anon",
		"bus":              "rl:bus:1001",
		"ip_route":         "rl:ip:10.0.0.1:route:POST /v1/routes/:id/bookings",
		"ip_subject_route": "rl:ip:10.0.0.1:sub:anon:route:POST /v1/routes/:id/bookings",
	}
	for strategy, want := range tests {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Errorf("%s: got %q, want %q", strategy, got, want)
		}
	}

	c.Set("subject", "admin")
	if got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "subject"}, c); got != "rl:sub:admin" {
		t.Errorf("got %q", got)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	for ms, want := range map[int64]int{0: 0, 1: 1, 1000: 1, 1001: 2, -50: 0} {
		if got := retryAfterSeconds(ms); got != want {
			t.Errorf("retryAfterSeconds(%d) = %d, want %d", ms, got, want)
		}
	}
}
