package metrics

import (
	"sync"
	"time"
)

type sourceStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

type cacheStats struct {
	hits   int
	misses int
}

// Recorder captures lightweight, in-memory metrics about fetches, cache lookups
// and resolutions, mirroring them into OpenTelemetry instruments when configured.
type Recorder struct {
	mu          sync.Mutex
	sources     map[string]*sourceStats
	caches      map[string]*cacheStats
	resolutions map[string]int
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		sources:     make(map[string]*sourceStats),
		caches:      make(map[string]*cacheStats),
		resolutions: make(map[string]int),
		otel:        otel,
	}
}

// RecordFetch increments counters for a page fetch against source and stores the last observed latency.
func (r *Recorder) RecordFetch(source string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.sources[source]
	if !ok {
		stats = &sourceStats{}
		r.sources[source] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFetch(source, duration, err)
	}
}

// RecordCacheLookup tracks a hit or miss against a named cache store.
func (r *Recorder) RecordCacheLookup(store string, hit bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.caches[store]
	if !ok {
		stats = &cacheStats{}
		r.caches[store] = stats
	}
	if hit {
		stats.hits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(store, hit)
	}
}

// RecordResolution tracks the outcome of one resolution ("resolved", "unresolved", "failed").
func (r *Recorder) RecordResolution(outcome string, probes int, duration time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.resolutions[outcome]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordResolution(outcome, probes, duration)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordWarmCycle tracks cache warmer cycles and errors.
func (r *Recorder) RecordWarmCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordWarm(duration, err)
}

// FetchCalls returns the total fetch attempts recorded for a source.
func (r *Recorder) FetchCalls(source string) int {
	return r.Snapshot(source).Calls
}

// FetchErrors returns the total failed fetches recorded for a source.
func (r *Recorder) FetchErrors(source string) int {
	return r.Snapshot(source).Errors
}

// LastFetchLatency returns the last recorded latency for a source.
func (r *Recorder) LastFetchLatency(source string) time.Duration {
	return r.Snapshot(source).LastCallLatency
}

// CacheHits returns the number of hits recorded for a store.
func (r *Recorder) CacheHits(store string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.caches[store]; ok {
		return stats.hits
	}
	return 0
}

// CacheMisses returns the number of misses recorded for a store.
func (r *Recorder) CacheMisses(store string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.caches[store]; ok {
		return stats.misses
	}
	return 0
}

// Resolutions returns how many resolutions ended with outcome.
func (r *Recorder) Resolutions(outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolutions[outcome]
}

// Snapshot returns a copy of the current fetch stats for a source.
type Snapshot struct {
	Calls           int
	Errors          int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(source string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.sources[source]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastCallLatency: stats.lastCallLatency,
	}
}
