// Package resolver reconciles a roster player ID with a ratings-directory
// profile and caches the resulting rating for the session.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/ntrp-rating-service/internal/cache"
	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/extract"
	"github.com/preston-bernstein/ntrp-rating-service/internal/fetch"
	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
	"github.com/preston-bernstein/ntrp-rating-service/internal/sources"
)

// MaxProbes is the number of same-name profiles tried on the ratings site.
const MaxProbes = 20

const outcomeFailed = "failed"

// Config wires an Engine.
type Config struct {
	URLs     sources.URLs
	Fetcher  fetch.Fetcher
	Stores   *cache.Stores
	Recorder *metrics.Recorder
	Logger   *slog.Logger
}

// Engine resolves player IDs to rating records.
type Engine struct {
	urls     sources.URLs
	fetcher  fetch.Fetcher
	stores   *cache.Stores
	recorder *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine constructs an Engine. A nil Stores gets a private in-memory backend.
func NewEngine(cfg Config) *Engine {
	stores := cfg.Stores
	if stores == nil {
		stores = cache.NewStores(cache.NewMemoryBackend(), cache.Options{Recorder: cfg.Recorder, Logger: cfg.Logger})
	}
	return &Engine{
		urls:     cfg.URLs,
		fetcher:  cfg.Fetcher,
		stores:   stores,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Resolve turns id into a resolved record or the unresolved outcome. The only
// error it returns is a *fetch.TransportError; nothing is cached in that case.
func (e *Engine) Resolve(ctx context.Context, id domain.PlayerID) (domain.Resolution, error) {
	start := e.now()
	logger := logging.FromContext(ctx, e.logger)
	if logger != nil {
		logger = logger.With(slog.String(logging.FieldPlayerID, id))
	}

	res, err := e.resolve(ctx, logger, id)
	elapsed := e.now().Sub(start)
	if err != nil {
		e.recorder.RecordResolution(outcomeFailed, res.Probes, elapsed)
		logging.Warn(logger, "resolution failed",
			slog.Int(logging.FieldProbe, res.Probes),
			slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
			"error", err,
		)
		return res, err
	}

	e.recorder.RecordResolution(string(res.Outcome), res.Probes, elapsed)
	logging.Info(logger, "resolution finished",
		slog.String(logging.FieldOutcome, string(res.Outcome)),
		slog.Int(logging.FieldProbe, res.Probes),
		slog.Bool("from_cache", res.FromCache),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return res, nil
}

func (e *Engine) resolve(ctx context.Context, logger *slog.Logger, id domain.PlayerID) (domain.Resolution, error) {
	if record, ok := e.cachedRecord(ctx, logger, id); ok {
		return domain.NewResolved(id, record, 0, true), nil
	}

	body, err := e.rosterPage(ctx, logger, id)
	if err != nil {
		return domain.NewUnresolved(id, 0), err
	}
	roster := extract.ParseRosterPage(body)
	if roster.Location == "" {
		logging.Debug(logger, "roster page has no location; no candidate can match")
	}

	match, probes, err := e.findMatch(ctx, logger, id, roster)
	if err != nil {
		return domain.NewUnresolved(id, probes), err
	}
	if !match.Complete() {
		return domain.NewUnresolved(id, probes), nil
	}

	record := domain.ResolvedRecord{URL: match.URL, Rating: match.Rating}
	if err := e.stores.Ratings.Set(ctx, id, record); err != nil {
		logging.Warn(logger, "rating cache write failed", "error", err)
	}
	return domain.NewResolved(id, record, probes, false), nil
}

func (e *Engine) cachedRecord(ctx context.Context, logger *slog.Logger, id domain.PlayerID) (domain.ResolvedRecord, bool) {
	record, ok, err := e.stores.Ratings.Get(ctx, id)
	if err != nil {
		logging.Warn(logger, "rating cache read failed", "error", err)
		return domain.ResolvedRecord{}, false
	}
	return record, ok && record.Valid()
}

func (e *Engine) rosterPage(ctx context.Context, logger *slog.Logger, id domain.PlayerID) (string, error) {
	body, ok, err := e.stores.RosterPages.Get(ctx, id)
	if err != nil {
		logging.Warn(logger, "roster page cache read failed", "error", err)
	}
	if ok {
		return body, nil
	}

	body, err = e.fetch(ctx, e.urls.RosterPage(id))
	if err != nil {
		return "", err
	}
	if err := e.stores.RosterPages.Set(ctx, id, body); err != nil {
		logging.Warn(logger, "roster page cache write failed", "error", err)
	}
	return body, nil
}

// findMatch returns the accepted candidate and how many candidate pages were fetched.
func (e *Engine) findMatch(ctx context.Context, logger *slog.Logger, id domain.PlayerID, roster domain.RosterAttributes) (domain.Match, int, error) {
	if page, ok := e.cachedCandidate(ctx, logger, id); ok {
		profile := extract.ParseProfilePage(page.Body, roster.FirstName, roster.LastName)
		return domain.Match{URL: page.URL, Rating: profile.Rating}, 0, nil
	}

	for s := 1; s <= MaxProbes; s++ {
		url := e.urls.ProfilePage(roster.FirstName, roster.LastName, s)
		body, err := e.fetch(ctx, url)
		if err != nil {
			return domain.Match{}, s, err
		}

		profile := extract.ParseProfilePage(body, roster.FirstName, roster.LastName)
		if !locationsMatch(roster.Location, profile.Location) {
			continue
		}

		logging.Debug(logger, "candidate matched",
			slog.Int(logging.FieldProbe, s),
			slog.String(logging.FieldURL, url),
		)
		if err := e.stores.CandidatePages.Set(ctx, id, domain.CandidatePage{URL: url, Body: body}); err != nil {
			logging.Warn(logger, "candidate page cache write failed", "error", err)
		}
		return domain.Match{URL: url, Rating: profile.Rating}, s, nil
	}
	return domain.Match{}, MaxProbes, nil
}

func (e *Engine) cachedCandidate(ctx context.Context, logger *slog.Logger, id domain.PlayerID) (domain.CandidatePage, bool) {
	page, ok, err := e.stores.CandidatePages.Get(ctx, id)
	if err != nil {
		logging.Warn(logger, "candidate page cache read failed", "error", err)
		return domain.CandidatePage{}, false
	}
	return page, ok
}

func (e *Engine) fetch(ctx context.Context, url string) (string, error) {
	if e.fetcher == nil {
		return "", &fetch.TransportError{URL: url, Err: fetch.ErrFetcherUnavailable}
	}
	body, err := e.fetcher.FetchPage(ctx, url)
	if err == nil {
		return body, nil
	}
	if _, ok := fetch.AsTransportError(err); ok {
		return "", err
	}
	return "", &fetch.TransportError{URL: url, Err: err}
}

// locationsMatch is an exact, case-sensitive comparison. An empty roster
// location never matches.
func locationsMatch(roster, candidate string) bool {
	return roster != "" && candidate == roster
}
