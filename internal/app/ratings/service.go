package ratings

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
)

const defaultConcurrency = 4

// Resolver resolves one player ID.
type Resolver interface {
	Resolve(ctx context.Context, id domain.PlayerID) (domain.Resolution, error)
}

// Result is the outcome of resolving one caller-supplied reference.
type Result struct {
	Ref        string
	Resolution domain.Resolution
	Err        error
}

// Service coordinates rating lookups using a Resolver.
type Service struct {
	resolver    Resolver
	concurrency int
}

// NewService constructs a Service. concurrency bounds ResolveMany.
func NewService(resolver Resolver, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{resolver: resolver, concurrency: concurrency}
}

// Resolve resolves a bare player ID.
func (s *Service) Resolve(ctx context.Context, id domain.PlayerID) (domain.Resolution, error) {
	return s.resolver.Resolve(ctx, id)
}

// ResolveRef resolves a bare player ID or a roster player link.
func (s *Service) ResolveRef(ctx context.Context, ref string) (domain.Resolution, error) {
	id, err := domain.ParsePlayerRef(ref)
	if err != nil {
		return domain.Resolution{}, err
	}
	return s.resolver.Resolve(ctx, id)
}

// ResolveMany resolves refs concurrently and returns one Result per ref in
// input order. Duplicate refs are resolved independently.
func (s *Service) ResolveMany(ctx context.Context, refs []string) []Result {
	results := make([]Result, len(refs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			res, err := s.ResolveRef(ctx, ref)
			results[i] = Result{Ref: ref, Resolution: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
