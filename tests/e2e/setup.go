//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"resource-finder/cmd/bootstrap"
	"resource-finder/internal/infra/cache"
	"resource-finder/internal/infra/geo"
	"resource-finder/internal/pkg/config"
	"resource-finder/internal/usecase"
	"resource-finder/tests/e2e/common/helper"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

var (
	redisContainerOnce sync.Once
	redisTestContainer testcontainers.Container
)

// Client addresses the geo fixture knows about.
const (
	ClientIPIndia = "203.0.113.10"
	ClientIPJapan = "203.0.113.20"
	ClientIPUS    = "203.0.113.30"
)

var testLocations = geo.StaticLocator{
	ClientIPIndia: "IN",
	ClientIPJapan: "JP",
	ClientIPUS:    "US",
}

type ContainerInfo struct {
	Host string
	Port nat.Port
}

// ------------------------------------------------------------
// 各テストプロセス用にセットアップ
// ------------------------------------------------------------
func setupE2EEnvironment(t *testing.T) (*redis.Client, *helper.FakeUpstream, *gin.Engine, config.Config) {
	redisInfo := startContainers(t)

	upstream := helper.NewFakeUpstream()
	t.Cleanup(upstream.Close)

	cfg := createTestConfig(redisInfo, upstream.URL())

	rdb := cache.NewRedisClient(cfg.Cache.Redis)
	t.Cleanup(func() { _ = rdb.Close() })

	router, app := buildE2EApp(cfg)
	require.NotNil(t, router, "Routerのセットアップに失敗")

	// Register cleanup for the fx app
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("fxアプリケーションの停止に失敗しました", "error", err.Error())
		}
	})

	slog.Info("E2E環境の準備が完了しました",
		"redis_host", redisInfo.Host,
		"redis_port", redisInfo.Port.Port(),
		"key_prefix", cfg.Cache.Redis.KeyPrefix)

	return rdb, upstream, router, cfg
}

// ------------------------------------------------------------
// コンテナ起動関数
// ------------------------------------------------------------
func startContainers(t *testing.T) ContainerInfo {
	gin.SetMode(gin.TestMode)
	startRedisContainerOnce(t)

	redisInfo, err := getContainerHostPort(redisTestContainer, "6379/tcp")
	require.NoError(t, err, "Redisコンテナ情報の取得に失敗")

	return redisInfo
}

// ------------------------------------------------------------
// E2Eテスト用アプリケーション構築関数
// ------------------------------------------------------------
func buildE2EApp(cfg config.Config) (*gin.Engine, *fx.App) {
	var router *gin.Engine

	testConfigModule := fx.Module("testconfig",
		fx.Supply(cfg),
	)

	app := fx.New(
		testConfigModule,
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.AppModule,

		// GeoIP データベースの代わりに固定の対応表を使う
		fx.Decorate(func(usecase.GeoLocator) usecase.GeoLocator { return testLocations }),

		fx.Populate(&router),

		// ログを無効にして起動
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to start fx app: %v", err))
	}

	if router == nil {
		panic("fxアプリケーションの起動に失敗しました")
	}

	return router, app
}

func createTestConfig(redisInfo ContainerInfo, upstreamURL string) config.Config {
	testConfig := config.NewTestConfig()
	testConfig.Upstream.URL = upstreamURL
	testConfig.Cache.Backend = config.CacheBackendRedis
	testConfig.Cache.Redis = config.RedisConfig{
		Addr: fmt.Sprintf("%s:%s", redisInfo.Host, redisInfo.Port.Port()),
		// プロセス毎に別のキー空間を使う
		KeyPrefix: "e2e:" + uuid.NewString() + ":",
	}
	return testConfig
}

// ------------------------------------------------------------
// コンテナ起動の共通関数
// ------------------------------------------------------------
func startGenericContainer(req testcontainers.ContainerRequest, timeoutSec int) (testcontainers.Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

// ------------------------------------------------------------
// Redisコンテナを一度だけ起動／再利用
// ------------------------------------------------------------
func startRedisContainerOnce(t *testing.T) {
	redisContainerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			Cmd: []string{
				"redis-server",
				"--save", "", // 永続化しない
				"--appendonly", "no",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort("6379/tcp"),
			).WithDeadline(60 * time.Second),
			Labels: map[string]string{"purpose": "e2e-tests"},
		}

		var err error
		redisTestContainer, err = startGenericContainer(req, 120)
		require.NoError(t, err, "Redisコンテナの起動に失敗")

		t.Cleanup(func() {
			if redisTestContainer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := redisTestContainer.Terminate(ctx); err != nil {
					slog.Warn("Redisコンテナの終了に失敗しました", "error", err.Error())
				}
			}
		})
	})
}

// ------------------------------------------------------------
// コンテナ関連の共通ユーティリティ関数
// ------------------------------------------------------------
func getContainerHostPort(c testcontainers.Container, port string) (ContainerInfo, error) {
	ctx := context.Background()
	mappedPort, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return ContainerInfo{}, err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return ContainerInfo{}, err
	}
	return ContainerInfo{Host: host, Port: mappedPort}, nil
}

// ------------------------------------------------------------
// E2Eテストスイートで共通のセットアップ
// ------------------------------------------------------------
type SharedSuite struct {
	suite.Suite
	Router   *gin.Engine
	Redis    *redis.Client
	Upstream *helper.FakeUpstream
	Config   config.Config
}

func (s *SharedSuite) SetupSharedSuite(t *testing.T) {
	rdb, upstream, router, cfg := setupE2EEnvironment(t)
	s.Redis = rdb
	s.Upstream = upstream
	s.Router = router
	s.Config = cfg
	require.NotNil(t, rdb, "Redisのセットアップに失敗")
	require.NotEmpty(t, s.Config, "Configの取得に失敗")
	require.NotNil(t, s.Router, "Routerのセットアップに失敗")
}

func (s *SharedSuite) SetupSuite() {
	s.SetupSharedSuite(s.T())
}

func (s *SharedSuite) SetupSubTest() {
	s.Upstream.Reset()
	require.NoError(s.T(), s.FlushCache(), "Failed to reset cache state")
}

// FlushCache removes every key under this process's prefix.
func (s *SharedSuite) FlushCache() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	iter := s.Redis.Scan(ctx, 0, s.Config.Cache.Redis.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.Redis.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
