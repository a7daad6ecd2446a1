package config

import "github.com/preston-bernstein/ntrp-rating-service/internal/sources"

// SourcesConfig points at the roster site and the ratings site.
type SourcesConfig struct {
	RosterBaseURL  string
	RatingsBaseURL string
}

func loadSources() SourcesConfig {
	return SourcesConfig{
		RosterBaseURL:  envOrDefault(envRosterBaseURL, sources.DefaultRosterBaseURL),
		RatingsBaseURL: envOrDefault(envRatingsBaseURL, sources.DefaultRatingsBaseURL),
	}
}
