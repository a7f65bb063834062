package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
)

type fakeLimiter struct {
	result *ratelimit.Result
	err    error
	keys   []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ ratelimit.Limit) (*ratelimit.Result, error) {
	f.keys = append(f.keys, key)
	return f.result, f.err
}

func newLimitedRouter(l ratelimit.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(l, ratelimit.PerSecond(10, 20)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *fakeLimiter
		wantStatus int
	}{
		{"allowed", &fakeLimiter{result: &ratelimit.Result{Allowed: true, Remaining: 19}}, http.StatusOK},
		{"rejected", &fakeLimiter{result: &ratelimit.Result{Allowed: false, RetryAfter: 2 * time.Second}}, http.StatusTooManyRequests},
		{"limiter down fails open", &fakeLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			newLimitedRouter(tt.limiter).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if len(tt.limiter.keys) != 1 {
				t.Fatalf("limiter called %d times, want 1", len(tt.limiter.keys))
			}
			if tt.wantStatus == http.StatusTooManyRequests && w.Header().Get("Retry-After") != "3" {
				t.Errorf("Retry-After = %q, want 3", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestGinRequestIDMiddleware_PropagatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinRequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if got := w.Header().Get(RequestIDHeader); got == "" {
		t.Error("expected a generated request id")
	}
}

func TestGinRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinRecoveryMiddleware())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
