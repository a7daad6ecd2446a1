package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
)

// StubResolver is a test double for the rating resolver.
type StubResolver struct {
	Records map[string]domain.ResolvedRecord
	Errs    map[string]error
	Err     error
	Calls   atomic.Int32
	Notify  chan struct{}

	mu  sync.Mutex
	ids []string
}

// Resolve returns the configured record for id, or the unresolved outcome.
func (s *StubResolver) Resolve(ctx context.Context, id domain.PlayerID) (domain.Resolution, error) {
	s.Calls.Add(1)
	s.mu.Lock()
	s.ids = append(s.ids, id)
	s.mu.Unlock()
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}

	if err := ctx.Err(); err != nil {
		return domain.NewUnresolved(id, 0), err
	}
	if s.Err != nil {
		return domain.NewUnresolved(id, 0), s.Err
	}
	if err, ok := s.Errs[id]; ok {
		return domain.NewUnresolved(id, 0), err
	}
	if rec, ok := s.Records[id]; ok {
		return domain.NewResolved(id, rec, 1, false), nil
	}
	return domain.NewUnresolved(id, 20), nil
}

// IDs returns the resolved IDs in call order.
func (s *StubResolver) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
