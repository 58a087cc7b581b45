package components

import (
	"context"
	"log/slog"

	"resource-finder/internal/domain/currency"
	"resource-finder/internal/infra/cache"
	"resource-finder/internal/infra/geo"
	"resource-finder/internal/infra/llm"
	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/pkg/config"
	"resource-finder/internal/pkg/errs"
	"resource-finder/internal/usecase"

	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	currencyModule,
	cacheModule,
	geoModule,
	upstreamModule,
)

var currencyModule = fx.Module("infra/currency",
	fx.Provide(
		NewCurrencyTable,
		currency.NewNormalizer,
	),
)

var cacheModule = fx.Module("infra/cache",
	fx.Provide(
		NewListingCache,
	),
)

var geoModule = fx.Module("infra/geo",
	fx.Provide(
		NewGeoLocator,
	),
)

var upstreamModule = fx.Module("infra/upstream",
	fx.Provide(
		fx.Annotate(
			NewUpstreamClient,
			fx.As(new(usecase.ChatCompleter)),
		),
	),
)

func NewCurrencyTable(cfg config.Config, logger *slog.Logger) (*currency.Table, error) {
	if cfg.Currency.TableFile == "" {
		return currency.DefaultTable(), nil
	}
	table, err := currency.LoadTableFile(cfg.Currency.TableFile)
	if err != nil {
		return nil, err
	}
	logger.Info("currency table loaded", "file", cfg.Currency.TableFile, "base", table.Base())
	return table, nil
}

func NewListingCache(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (usecase.ListingCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		store := cache.NewRedisStore(cache.NewRedisClient(cfg.Cache.Redis), cfg.Cache.Redis.KeyPrefix, cfg.Cache.TTL, clk)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := store.Ping(ctx); err != nil {
					return errs.Wrapf(err, "connect redis %s", cfg.Cache.Redis.Addr)
				}
				logger.Info("response cache ready", "backend", "redis", "addr", cfg.Cache.Redis.Addr, "ttl", cfg.Cache.TTL)
				return nil
			},
			OnStop: func(_ context.Context) error {
				return store.Close()
			},
		})
		return store, nil

	case config.CacheBackendMemory:
		store := cache.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.MaxEntries, clk)
		logger.Info("response cache ready", "backend", "memory", "ttl", cfg.Cache.TTL, "max_entries", cfg.Cache.MaxEntries)
		if cfg.Cache.PurgeInterval > 0 {
			runEvery(lc, cfg.Cache.PurgeInterval, func() {
				if n := store.PurgeExpired(); n > 0 {
					logger.Debug("expired cache entries purged", "removed", n, "remaining", store.Len())
				}
			})
		}
		return store, nil

	default:
		return nil, errs.Newf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

func NewGeoLocator(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (usecase.GeoLocator, error) {
	if cfg.Geo.DBPath == "" {
		logger.Warn("GEOIP_DB_PATH not set, every client gets the base currency")
		return geo.NopLocator{}, nil
	}
	locator, err := geo.OpenMaxMind(cfg.Geo.DBPath)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return locator.Close()
		},
	})
	return locator, nil
}

func NewUpstreamClient(cfg config.Config, logger *slog.Logger) *llm.Client {
	return llm.NewClient(cfg.Upstream, logger)
}
