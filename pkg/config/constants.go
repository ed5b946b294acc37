package config

const EnvPrefix = "REFUNDLENS"

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

const (
	EnvAppEnv          = "REFUNDLENS_APP_ENV"
	EnvPort            = "REFUNDLENS_APP_PORT"
	EnvLogLevel        = "REFUNDLENS_LOG_LEVEL"
	EnvLogFormat       = "REFUNDLENS_LOG_FORMAT"
	EnvTimezone        = "REFUNDLENS_APP_TIMEZONE"
	EnvShopDomain      = "REFUNDLENS_SHOPIFY_SHOP_DOMAIN"
	EnvShopAccessToken = "REFUNDLENS_SHOPIFY_ACCESS_TOKEN"
	EnvShopAPIVersion  = "REFUNDLENS_SHOPIFY_API_VERSION"
	EnvShopPageDelay   = "REFUNDLENS_SHOPIFY_PAGE_DELAY"
	EnvCacheBackend    = "REFUNDLENS_CACHE_BACKEND"
	EnvCacheTTL        = "REFUNDLENS_CACHE_TTL"
	EnvCacheSweep      = "REFUNDLENS_CACHE_SWEEP_INTERVAL"
	EnvRedisURL        = "REFUNDLENS_REDIS_URL"
	EnvRedisAddr       = "REFUNDLENS_REDIS_ADDR"
	EnvLookbackMonths  = "REFUNDLENS_ORDERS_LOOKBACK_MONTHS"
	EnvCORSOrigins     = "REFUNDLENS_CORS_ALLOWED_ORIGINS"
)
