package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Secrets and values with no safe default (upstream API key)
// - default: Values common across all environments (timeouts, TTLs, timezone)
// -----------------------------------------------------------------------------

type Config struct {
	App       AppConfig
	Server    ServerConfig
	CORS      CORSConfig
	Log       LogConfig
	Upstream  UpstreamConfig
	Cache     CacheConfig
	Geo       GeoConfig
	Currency  CurrencyConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env string `envconfig:"APP_ENV" default:"development"`
}

type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"5000"`
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1,::1"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,X-Request-ID"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

// UpstreamConfig points at an OpenAI-compatible chat completions endpoint.
type UpstreamConfig struct {
	URL     string        `envconfig:"LLM_API_URL" default:"https://cloud.olakrutrim.com/v1/chat/completions"`
	APIKey  string        `envconfig:"LLM_API_KEY" required:"true"`
	Model   string        `envconfig:"LLM_MODEL" default:"Meta-Llama-3.1-70B-Instruct"`
	Timeout time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type CacheConfig struct {
	Backend       string        `envconfig:"CACHE_BACKEND" default:"memory"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	MaxEntries    int           `envconfig:"CACHE_MAX_ENTRIES" default:"1000"`
	PurgeInterval time.Duration `envconfig:"CACHE_PURGE_INTERVAL" default:"10m"`
	Redis         RedisConfig
}

type RedisConfig struct {
	Addr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password  string `envconfig:"REDIS_PASSWORD"`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"resource_cache:"`
}

// GeoConfig.DBPath is a MaxMind GeoLite2/GeoIP2 country database. Empty disables lookups.
type GeoConfig struct {
	DBPath string `envconfig:"GEOIP_DB_PATH"`
}

// CurrencyConfig.TableFile overrides the built-in exchange-rate table with a YAML file.
type CurrencyConfig struct {
	TableFile string `envconfig:"CURRENCY_TABLE_FILE"`
}

// RateLimitConfig is a per client IP token bucket. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"1"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Backend)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.TTL)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must not be negative, got %d", c.MaxEntries)
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Cache.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid cache config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		App: AppConfig{Env: "test"},
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Upstream: UpstreamConfig{
			URL:     "http://127.0.0.1:0/v1/chat/completions",
			APIKey:  "test-api-key",
			Model:   "test-model",
			Timeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Backend:       CacheBackendMemory,
			TTL:           24 * time.Hour,
			MaxEntries:    100,
			PurgeInterval: time.Minute,
			Redis: RedisConfig{
				Addr:      "localhost:16379", // Test redis port
				KeyPrefix: "test_resource_cache:",
			},
		},
		RateLimit: RateLimitConfig{
			RPS: 0, // Disabled for tests
		},
	}
}
