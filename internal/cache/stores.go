package cache

import (
	"log/slog"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
)

// Fixed store names shared with existing session data.
const (
	RosterPageStore    = "ustaNorCalPlayerPageCache"
	RatingStore        = "ratingCache"
	CandidatePageStore = "tennisRecordPlayerPageCache"
)

// Options configures the named stores.
type Options struct {
	// CandidatePagesEnabled turns on caching of the matched ratings page per
	// player. Off by default: a hit skips probing entirely and trusts the
	// cached page, which is only safe once cached pages are known to be fresh.
	CandidatePagesEnabled bool
	Recorder              *metrics.Recorder
	Logger                *slog.Logger
}

// Stores bundles the three session stores the resolver uses, all keyed by player ID.
// Page stores keep bodies byte for byte; ratings are JSON records.
type Stores struct {
	RosterPages    *Store[string]
	Ratings        *Store[domain.ResolvedRecord]
	CandidatePages *Tier[domain.CandidatePage]
}

// NewStores builds the named stores on backend.
func NewStores(backend Backend, opts Options) *Stores {
	return &Stores{
		RosterPages: NewStoreWithCodec(backend, RosterPageStore, PageCodec(), opts.Recorder, opts.Logger),
		Ratings:     NewStore[domain.ResolvedRecord](backend, RatingStore, opts.Recorder, opts.Logger),
		CandidatePages: NewTier(
			NewStoreWithCodec(backend, CandidatePageStore, CandidatePageCodec(), opts.Recorder, opts.Logger),
			opts.CandidatePagesEnabled,
		),
	}
}
