package config

import "time"

// WarmConfig lists player IDs resolved in the background so their ratings are cached.
type WarmConfig struct {
	PlayerIDs []string
	Interval  time.Duration
}

// Enabled reports whether any IDs are configured.
func (w WarmConfig) Enabled() bool {
	return len(w.PlayerIDs) > 0
}

func loadWarm() WarmConfig {
	return WarmConfig{
		PlayerIDs: csvEnv(envWarmPlayerIDs),
		Interval:  durationEnvOrDefault(envWarmInterval, defaultWarmInterval),
	}
}
