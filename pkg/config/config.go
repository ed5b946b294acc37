package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Shopify ShopifyConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Orders  OrdersConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cache.validate(); err != nil {
		return nil, err
	}
	if cfg.Cache.UsesRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or %s is required when %s=%s", EnvRedisURL, EnvRedisAddr, EnvCacheBackend, CacheBackendRedis)
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REFUNDLENS_APP_ENV" required:"true"`
	Port         string `envconfig:"REFUNDLENS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"REFUNDLENS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"REFUNDLENS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"REFUNDLENS_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"REFUNDLENS_APP_TIMEZONE" default:"UTC"`
}

// Location resolves the viewing timezone used for analytics day boundaries.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type ShopifyConfig struct {
	ShopDomain     string        `envconfig:"REFUNDLENS_SHOPIFY_SHOP_DOMAIN" required:"true"`
	AccessToken    string        `envconfig:"REFUNDLENS_SHOPIFY_ACCESS_TOKEN" required:"true"`
	APIVersion     string        `envconfig:"REFUNDLENS_SHOPIFY_API_VERSION" default:"2024-01"`
	PageLimit      int           `envconfig:"REFUNDLENS_SHOPIFY_PAGE_LIMIT" default:"250"`
	PageDelay      time.Duration `envconfig:"REFUNDLENS_SHOPIFY_PAGE_DELAY" default:"500ms"`
	RequestTimeout time.Duration `envconfig:"REFUNDLENS_SHOPIFY_REQUEST_TIMEOUT" default:"0s"`
}

type CacheConfig struct {
	Backend       string        `envconfig:"REFUNDLENS_CACHE_BACKEND" default:"memory"`
	TTL           time.Duration `envconfig:"REFUNDLENS_CACHE_TTL" default:"5m"`
	SweepInterval time.Duration `envconfig:"REFUNDLENS_CACHE_SWEEP_INTERVAL"`
}

// UsesRedis reports whether cache entries live in redis instead of process memory.
func (c CacheConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(c.Backend), CacheBackendRedis)
}

// Sweep returns the sweep period, which defaults to the TTL.
func (c CacheConfig) Sweep() time.Duration {
	if c.SweepInterval > 0 {
		return c.SweepInterval
	}
	return c.TTL
}

func (c CacheConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCacheBackend, CacheBackendMemory, CacheBackendRedis)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCacheTTL)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"REFUNDLENS_REDIS_URL"`
	Address      string        `envconfig:"REFUNDLENS_REDIS_ADDR"`
	Password     string        `envconfig:"REFUNDLENS_REDIS_PASSWORD"`
	DB           int           `envconfig:"REFUNDLENS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REFUNDLENS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REFUNDLENS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REFUNDLENS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REFUNDLENS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REFUNDLENS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type OrdersConfig struct {
	LookbackMonths int `envconfig:"REFUNDLENS_ORDERS_LOOKBACK_MONTHS" default:"12"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"REFUNDLENS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
