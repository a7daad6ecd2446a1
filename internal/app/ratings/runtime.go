package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/ntrp-rating-service/internal/cache"
	"github.com/preston-bernstein/ntrp-rating-service/internal/config"
	"github.com/preston-bernstein/ntrp-rating-service/internal/fetch"
	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
	"github.com/preston-bernstein/ntrp-rating-service/internal/resolver"
	"github.com/preston-bernstein/ntrp-rating-service/internal/sources"
)

const redisKeyPrefix = "ntrp"

// Runtime owns the long-lived pieces behind the Service: the fetch service
// workers, the rate limiter and the session store backend.
type Runtime struct {
	Service *Service
	Engine  *resolver.Engine
	Backend cache.Backend

	fetchService *fetch.Service
	cancel       context.CancelFunc
	closers      []func()
	logger       *slog.Logger
}

// Options overrides pieces of the default wiring.
type Options struct {
	// Backend replaces the backend selected by cfg.Cache.
	Backend cache.Backend
	// Fetcher replaces the HTTP client at the bottom of the fetch chain.
	Fetcher fetch.Fetcher
}

// NewRuntime assembles the fetch chain, the session stores and the engine, and
// starts the fetch service workers.
func NewRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, opts Options) (*Runtime, error) {
	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = newBackend(ctx, cfg.Cache, logger)
		if err != nil {
			return nil, err
		}
	}

	urls := sources.New(cfg.Sources.RosterBaseURL, cfg.Sources.RatingsBaseURL)

	base := opts.Fetcher
	switch {
	case base != nil:
	case cfg.Fetch.ReplayDir != "":
		base = fetch.NewReplayFetcher(cfg.Fetch.ReplayDir)
	default:
		base = fetch.NewHTTPClient(fetch.HTTPConfig{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
		})
	}
	if cfg.Fetch.RecordDir != "" {
		base = fetch.NewRecordingFetcher(base, cfg.Fetch.RecordDir, logger)
	}
	instrumented := fetch.NewInstrumentedFetcher(base, recorder, urls.SourceOf, logger)
	limited := fetch.NewRateLimitedFetcher(instrumented, cfg.Fetch.MinInterval, logger)

	rt := &Runtime{Backend: backend, logger: logger}
	if closer, ok := limited.(interface{ Close() }); ok {
		rt.closers = append(rt.closers, closer.Close)
	}

	svcCtx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	rt.fetchService = fetch.NewService(limited, cfg.Fetch.Workers, logger)
	rt.fetchService.Start(svcCtx)

	stores := cache.NewStores(backend, cache.Options{
		CandidatePagesEnabled: cfg.Cache.CandidatePagesEnabled,
		Recorder:              recorder,
		Logger:                logger,
	})
	rt.Engine = resolver.NewEngine(resolver.Config{
		URLs:     urls,
		Fetcher:  fetch.NewGateway(rt.fetchService, logger),
		Stores:   stores,
		Recorder: recorder,
		Logger:   logger,
	})
	rt.Service = NewService(rt.Engine, cfg.Fetch.Workers)

	logging.Info(logger, "rating runtime ready",
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.Bool("candidate_page_cache", cfg.Cache.CandidatePagesEnabled),
		slog.String("roster_base_url", cfg.Sources.RosterBaseURL),
		slog.String("ratings_base_url", cfg.Sources.RatingsBaseURL),
	)
	return rt, nil
}

// Close stops the fetch workers and releases the backend.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.fetchService != nil {
		if err := r.fetchService.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop fetch service: %w", err))
		}
	}
	if r.cancel != nil {
		r.cancel()
	}
	for _, closeFn := range r.closers {
		closeFn()
	}
	if r.Backend != nil {
		if err := r.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache backend: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newBackend(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Backend, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return cache.DialRedis(ctx, cache.RedisConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			KeyPrefix:  redisKeyPrefix,
			SessionTTL: cfg.SessionTTL,
		}, logger)
	default:
		return cache.NewMemoryBackend(), nil
	}
}
