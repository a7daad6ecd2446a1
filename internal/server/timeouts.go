package server

import "time"

const (
	readTimeout = 10 * time.Second
	// A cold lookup can take a roster fetch plus twenty rate-limited probes.
	writeTimeout = 90 * time.Second
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
