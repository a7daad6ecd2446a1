package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
)

// instrumentedFetcher records per-source attempts and latency.
type instrumentedFetcher struct {
	next     Fetcher
	recorder *metrics.Recorder
	sourceOf func(url string) string
	logger   *slog.Logger
}

// NewInstrumentedFetcher wraps next with metrics and logging. sourceOf labels a
// URL with the site it belongs to; nil labels everything "page".
func NewInstrumentedFetcher(next Fetcher, recorder *metrics.Recorder, sourceOf func(string) string, logger *slog.Logger) Fetcher {
	if sourceOf == nil {
		sourceOf = func(string) string { return "page" }
	}
	return &instrumentedFetcher{
		next:     next,
		recorder: recorder,
		sourceOf: sourceOf,
		logger:   logger,
	}
}

func (f *instrumentedFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if f.next == nil {
		return "", ErrFetcherUnavailable
	}
	source := f.sourceOf(url)
	start := time.Now()
	body, err := f.next.FetchPage(ctx, url)
	duration := time.Since(start)
	f.recorder.RecordFetch(source, duration, err)

	logger := logging.FromContext(ctx, f.logger)
	if err != nil {
		logging.Warn(logger, "page fetch failed",
			slog.String(logging.FieldSource, source),
			slog.String(logging.FieldURL, url),
			slog.Int64(logging.FieldDurationMS, duration.Milliseconds()),
			"error", err,
		)
		return "", err
	}
	logging.Debug(logger, "page fetched",
		slog.String(logging.FieldSource, source),
		slog.String(logging.FieldURL, url),
		slog.Int("bytes", len(body)),
		slog.Int64(logging.FieldDurationMS, duration.Milliseconds()),
	)
	return body, nil
}
