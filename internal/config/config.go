package config

// Config holds runtime configuration for the server.
type Config struct {
	Port string
	// RequestTimeout bounds one lookup or batch request; zero disables the bound.
	RequestTimeout Duration
	Sources        SourcesConfig
	Fetch          FetchConfig
	Cache          CacheConfig
	Warm           WarmConfig
	Metrics        MetricsConfig
	Logging        LoggingConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:           envOrDefault(envPort, defaultPort),
		RequestTimeout: nonNegativeDurationEnvOrDefault(envRequestTimeout, defaultRequestTimeout),
		Sources:        loadSources(),
		Fetch:          loadFetch(),
		Cache:          loadCache(),
		Warm:           loadWarm(),
		Metrics:        loadMetrics(),
		Logging:        loadLogging(),
	}
}
