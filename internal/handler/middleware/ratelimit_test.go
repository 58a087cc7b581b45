//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resource-finder/internal/handler/middleware"
	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/pkg/config"
	testhttp "resource-finder/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(rl *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/limited", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func post(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("burst is allowed then rejected with 429", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		r := newLimitedRouter(middleware.NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2}, clk))

		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)

		w := post(r, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.JSONEq(t, `{"error": "Too many requests"}`, w.Body.String())
		testhttp.AssertHeaders(t, w, map[string]string{
			"Retry-After":  "1",
			"Content-Type": "application/json; charset=utf-8",
		})
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		r := newLimitedRouter(middleware.NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1}, clk))

		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.2").Code)
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		r := newLimitedRouter(middleware.NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1}, clk))

		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)
		clk.Add(time.Second)
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
	})

	t.Run("non-positive rps disables limiting", func(t *testing.T) {
		rl := middleware.NewRateLimiter(config.RateLimitConfig{RPS: 0, Burst: 1}, clock.NewMockClock(start))
		r := newLimitedRouter(rl)

		assert.False(t, rl.Enabled())
		for range 20 {
			assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
		}
	})

	t.Run("cleanup drops idle visitors", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		rl := middleware.NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1}, clk)

		rl.Allow("10.0.0.1")
		clk.Add(5 * time.Minute)
		rl.Allow("10.0.0.2")
		clk.Add(6 * time.Minute)

		assert.Equal(t, 1, rl.Cleanup())
		assert.Equal(t, 0, rl.Cleanup())
	})
}
