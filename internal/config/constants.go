package config

import "time"

const (
	envPort           = "PORT"
	envRequestTimeout = "REQUEST_TIMEOUT"
	envRosterBaseURL  = "ROSTER_BASE_URL"
	envRatingsBaseURL = "RATINGS_BASE_URL"
	envFetchTimeout   = "FETCH_TIMEOUT"
	envFetchInterval  = "FETCH_MIN_INTERVAL"
	envFetchWorkers   = "FETCH_WORKERS"
	envFetchUserAgent = "FETCH_USER_AGENT"
	envFetchRecordDir = "FETCH_RECORD_DIR"
	envFetchReplayDir = "FETCH_REPLAY_DIR"
	envCacheBackend   = "CACHE_BACKEND"
	envRedisAddr      = "REDIS_ADDR"
	envRedisPassword  = "REDIS_PASSWORD"
	envRedisDB        = "REDIS_DB"
	envSessionTTL     = "SESSION_TTL"
	envCandidateCache = "CANDIDATE_PAGE_CACHE_ENABLED"
	envWarmPlayerIDs  = "WARM_PLAYER_IDS"
	envWarmInterval   = "WARM_INTERVAL"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"

	defaultPort = "4000"
	// Kept below the server write timeout so the client still gets the 504.
	defaultRequestTimeout = 60 * Duration(time.Second)
	defaultFetchTimeout   = 15 * Duration(time.Second)
	// Spacing between outbound page requests; both sites are small and shared.
	defaultFetchInterval  = 250 * Duration(time.Millisecond)
	defaultFetchWorkers   = 4
	defaultFetchUserAgent = "ntrp-rating-service/1.0"
	defaultRedisAddr      = "localhost:6379"
	defaultSessionTTL     = 12 * Duration(time.Hour)
	defaultWarmInterval   = 30 * Duration(time.Minute)
	defaultMetricsPort    = "9090"
	defaultServiceName    = "ntrp-rating-service"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"

	// CacheBackendMemory keeps session stores in process.
	CacheBackendMemory = "memory"
	// CacheBackendRedis keeps session stores in redis hashes with a TTL.
	CacheBackendRedis = "redis"
)
