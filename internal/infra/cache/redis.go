package cache

import (
	"context"
	"encoding/json"
	"time"

	"resource-finder/internal/infra"
	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/pkg/config"
	"resource-finder/internal/pkg/errs"
	"resource-finder/internal/usecase"

	"github.com/redis/go-redis/v9"
)

type redisEntry struct {
	Listing   *usecase.ResourceListing `json:"listing"`
	CreatedAt time.Time                `json:"created_at"`
}

// RedisStore shares listings between replicas. Expiry is delegated to redis key TTLs;
// the stored timestamp is re-checked on read so a lowered TTL takes effect at once.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	clock  clock.Clock
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, clk clock.Clock) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, clock: clk}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*usecase.ResourceListing, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errs.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, infra.WrapStoreErr(infra.KindUnavailable, "redis get", err)
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, infra.WrapStoreErr(infra.KindCorrupt, "decode cached listing", err)
	}
	if e.Listing == nil || s.clock.Now().Sub(e.CreatedAt) > s.ttl {
		return nil, false, nil
	}
	return e.Listing, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, listing *usecase.ResourceListing) error {
	raw, err := json.Marshal(redisEntry{Listing: listing, CreatedAt: s.clock.Now()})
	if err != nil {
		return infra.WrapStoreErr(infra.KindEncode, "encode listing", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return infra.WrapStoreErr(infra.KindUnavailable, "redis set", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
