package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow("10.0.0.1") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentCallers(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	// Exhaust the first caller's burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("First caller request %d should be allowed", i+1)
		}
	}

	// First caller should be rate limited
	if rl.Allow("10.0.0.1") {
		t.Error("First caller should be rate limited")
	}

	// Second caller should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.2") {
			t.Errorf("Second caller request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_GetState(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5)
	defer rl.Stop()

	// Unknown key reports the full burst
	remaining, _ := rl.GetState("10.0.0.1")
	if remaining != 5 {
		t.Errorf("Expected remaining 5 for unknown key, got %d", remaining)
	}

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")

	remaining, _ = rl.GetState("10.0.0.1")
	if remaining > 3 {
		t.Errorf("Expected at most 3 remaining after 2 requests, got %d", remaining)
	}
}

func TestRateLimitMiddleware_AllowsWithinBurst(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(10, 2)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	mw := RateLimitMiddleware(rl)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coffees", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := mw(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected X-RateLimit-Remaining header to be set")
	}
}

func TestRateLimitMiddleware_Returns429WhenExceeded(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	mw := RateLimitMiddleware(rl)(handler)

	// Exhaust the single-request burst
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coffees", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := mw(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header to be set")
	}
}

func TestGoogleVerifier_Disabled(t *testing.T) {
	v, err := NewGoogleVerifier("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Enabled() {
		t.Error("Verifier without a client ID should be disabled")
	}
}
