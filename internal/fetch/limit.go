package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

// rateLimitedFetcher spaces outbound requests by a minimum interval.
type rateLimitedFetcher struct {
	next   Fetcher
	ticker *time.Ticker
	logger *slog.Logger
}

// NewRateLimitedFetcher returns a Fetcher that issues at most one request per
// interval. Calls block until the next tick. A non-positive interval disables limiting.
func NewRateLimitedFetcher(next Fetcher, interval time.Duration, logger *slog.Logger) Fetcher {
	if interval <= 0 {
		return next
	}
	return &rateLimitedFetcher{
		next:   next,
		ticker: time.NewTicker(interval),
		logger: logger,
	}
}

func (f *rateLimitedFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if f == nil || f.next == nil {
		logging.Warn(f.loggerOrNil(), "fetcher unavailable", slog.String(logging.FieldURL, url))
		return "", ErrFetcherUnavailable
	}
	select {
	case <-ctx.Done():
		logging.Warn(logging.FromContext(ctx, f.logger), "rate-limited fetch canceled", slog.String(logging.FieldURL, url))
		return "", ctx.Err()
	case <-f.ticker.C:
	}
	return f.next.FetchPage(ctx, url)
}

// Close stops the underlying ticker.
func (f *rateLimitedFetcher) Close() {
	if f != nil && f.ticker != nil {
		f.ticker.Stop()
	}
}

func (f *rateLimitedFetcher) loggerOrNil() *slog.Logger {
	if f == nil {
		return nil
	}
	return f.logger
}
