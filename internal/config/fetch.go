package config

import "time"

// FetchConfig controls outbound page fetching.
type FetchConfig struct {
	Timeout     time.Duration
	MinInterval time.Duration // zero disables spacing
	Workers     int
	UserAgent   string
	// RecordDir saves every fetched page; ReplayDir serves saved pages instead of the network.
	RecordDir string
	ReplayDir string
}

func loadFetch() FetchConfig {
	return FetchConfig{
		Timeout:     durationEnvOrDefault(envFetchTimeout, defaultFetchTimeout),
		MinInterval: nonNegativeDurationEnvOrDefault(envFetchInterval, defaultFetchInterval),
		Workers:     intEnvOrDefault(envFetchWorkers, defaultFetchWorkers),
		UserAgent:   envOrDefault(envFetchUserAgent, defaultFetchUserAgent),
		RecordDir:   envOrDefault(envFetchRecordDir, ""),
		ReplayDir:   envOrDefault(envFetchReplayDir, ""),
	}
}
