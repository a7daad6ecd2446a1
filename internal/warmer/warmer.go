// Package warmer keeps a fixed list of players resolved so their ratings are
// already cached when they are requested.
package warmer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
)

const defaultInterval = 30 * time.Minute

// Resolver resolves one player ID.
type Resolver interface {
	Resolve(ctx context.Context, id domain.PlayerID) (domain.Resolution, error)
}

// Warmer resolves its player IDs once on start and then on every tick.
type Warmer struct {
	resolver Resolver
	ids      []domain.PlayerID
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the warm loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	Resolved            int
	Unresolved          int
}

// IsReady reports whether the last cycles completed without repeated failures.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Warmer. Invalid IDs are dropped with a warning.
func New(resolver Resolver, ids []string, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Warmer {
	if interval <= 0 {
		interval = defaultInterval
	}
	valid := make([]domain.PlayerID, 0, len(ids))
	for _, raw := range ids {
		id, err := domain.ParsePlayerRef(raw)
		if err != nil {
			logging.Warn(logger, "warmer skipping invalid player reference", slog.String("ref", raw))
			continue
		}
		valid = append(valid, id)
	}
	return &Warmer{
		resolver: resolver,
		ids:      valid,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// IDs returns the player IDs being kept warm.
func (w *Warmer) IDs() []domain.PlayerID {
	out := make([]domain.PlayerID, len(w.ids))
	copy(out, w.ids)
	return out
}

// Start begins warming until the context is cancelled or Stop is called.
func (w *Warmer) Start(ctx context.Context) {
	w.startMu.Lock()
	if w.started {
		w.startMu.Unlock()
		return
	}
	w.started = true
	ticker := time.NewTicker(w.interval)
	w.ticker = ticker
	w.startMu.Unlock()

	go func() {
		logging.Info(w.logger, "warmer started",
			slog.Int(logging.FieldCount, len(w.ids)),
			slog.Int64(logging.FieldDurationMS, w.interval.Milliseconds()),
		)
		w.warmOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				w.stopTicker()
				logging.Info(w.logger, "warmer stopped")
				return
			case <-w.done:
				w.stopTicker()
				logging.Info(w.logger, "warmer stopped")
				return
			case <-ticker.C:
				w.warmOnce(ctx)
			}
		}
	}()
}

// Stop halts the warm loop.
func (w *Warmer) Stop(ctx context.Context) error {
	_ = ctx
	w.stopOnce.Do(func() {
		close(w.done)
		w.stopTicker()
	})
	return nil
}

func (w *Warmer) warmOnce(ctx context.Context) {
	start := time.Now()
	w.recordAttempt(start)

	var resolved, unresolved, failed int
	var firstErr error
	for _, id := range w.ids {
		if ctx.Err() != nil {
			break
		}
		res, err := w.resolver.Resolve(ctx, id)
		switch {
		case err != nil:
			failed++
			if firstErr == nil {
				firstErr = err
			}
		case res.Resolved():
			resolved++
		default:
			unresolved++
		}
	}

	var cycleErr error
	if failed > 0 {
		cycleErr = fmt.Errorf("%d of %d players failed: %w", failed, len(w.ids), firstErr)
	}
	w.metrics.RecordWarmCycle(time.Since(start), cycleErr)

	if cycleErr != nil {
		logging.Error(w.logger, "warm cycle failed", cycleErr, slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		w.recordFailure(cycleErr, start, resolved, unresolved)
		return
	}
	w.recordSuccess(start, resolved, unresolved)
	logging.Info(w.logger, "warm cycle complete",
		slog.Int("resolved", resolved),
		slog.Int("unresolved", unresolved),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

func (w *Warmer) stopTicker() {
	w.startMu.Lock()
	defer w.startMu.Unlock()
	if w.ticker != nil {
		w.ticker.Stop()
	}
}

func (w *Warmer) recordAttempt(at time.Time) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.LastAttempt = at
}

func (w *Warmer) recordSuccess(at time.Time, resolved, unresolved int) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.ConsecutiveFailures = 0
	w.status.LastError = ""
	w.status.LastSuccess = at
	w.status.Resolved = resolved
	w.status.Unresolved = unresolved
}

func (w *Warmer) recordFailure(err error, at time.Time, resolved, unresolved int) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.ConsecutiveFailures++
	w.status.LastError = err.Error()
	w.status.LastAttempt = at
	w.status.Resolved = resolved
	w.status.Unresolved = unresolved
}

// Status returns a snapshot of the warmer's recent health.
func (w *Warmer) Status() Status {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	return w.status
}
