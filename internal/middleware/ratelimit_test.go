package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/config"
)

func limiterCtx() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/bookings")
	return c
}

func TestRateKeyStrategies(t *testing.T) {
	cases := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:203.0.113.9"},
		{"route", "rl:route:POST /v1/bookings"},
		{"ip_route", "rl:ip:203.0.113.9:route:POST /v1/bookings"},
		{"", "rl:ip:203.0.113.9:route:POST /v1/bookings"},
	}
	for _, tc := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}
		if got := rateKey(cfg, limiterCtx()); got != tc.want {
			t.Fatalf("rateKey(%q) = %q, want %q", tc.strategy, got, tc.want)
		}
	}
}

// The limiter runs before authentication, so buckets must never key on
// request identity that only auth middleware can resolve.
func TestRateKeyNeverKeysOnUser(t *testing.T) {
	for _, strategy := range []string{"ip", "route", "ip_route", "anything-else"} {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		key := rateKey(cfg, limiterCtx())
		if strings.Contains(key, "user") || strings.Contains(key, "anon") {
			t.Fatalf("rateKey(%q) = %q keys on user identity", strategy, key)
		}
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})
	if err := h(limiterCtx()); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("disabled limiter did not call next handler")
	}
}
