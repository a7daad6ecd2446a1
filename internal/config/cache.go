package config

import (
	"strings"
	"time"
)

// CacheConfig selects and configures the session store backend.
type CacheConfig struct {
	Backend               string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	SessionTTL            time.Duration
	CandidatePagesEnabled bool
}

func loadCache() CacheConfig {
	backend := strings.ToLower(strings.TrimSpace(envOrDefault(envCacheBackend, CacheBackendMemory)))
	if backend != CacheBackendRedis {
		backend = CacheBackendMemory
	}
	return CacheConfig{
		Backend:               backend,
		RedisAddr:             envOrDefault(envRedisAddr, defaultRedisAddr),
		RedisPassword:         envOrDefault(envRedisPassword, ""),
		RedisDB:               nonNegativeIntEnvOrDefault(envRedisDB, 0),
		SessionTTL:            durationEnvOrDefault(envSessionTTL, defaultSessionTTL),
		CandidatePagesEnabled: boolEnvOrDefault(envCandidateCache, false),
	}
}
