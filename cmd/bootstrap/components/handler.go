package components

import (
	"context"
	"log/slog"
	"time"

	"resource-finder/internal/handler"
	"resource-finder/internal/handler/api"
	"resource-finder/internal/handler/middleware"
	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewResourceHandler,
		NewRateLimiter,
	),
	fx.Invoke(handler.NewRouter),
)

const visitorCleanupInterval = time.Minute

func NewRateLimiter(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(cfg.RateLimit, clk)
	if !rl.Enabled() {
		logger.Info("rate limiting disabled")
		return rl
	}
	runEvery(lc, visitorCleanupInterval, func() {
		if n := rl.Cleanup(); n > 0 {
			logger.Debug("rate limiter visitors cleaned up", "removed", n)
		}
	})
	return rl
}

// runEvery calls fn on a ticker between fx start and stop.
func runEvery(lc fx.Lifecycle, interval time.Duration, fn func()) {
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						fn()
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			close(done)
			return nil
		},
	})
}
