package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

const defaultWorkers = 4

// ErrServiceStopped is returned when dispatching to a stopped Service.
var ErrServiceStopped = errors.New("fetch service stopped")

type envelope struct {
	ctx   context.Context
	msg   Message
	reply func(Reply)
}

// Service is the fetch service behind the Gateway: a fixed pool of workers
// taking messages from an inbox and answering through the reply callback.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
	workers int

	inbox    chan envelope
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool
}

// NewService constructs a Service delegating to fetcher.
func NewService(fetcher Fetcher, workers int, logger *slog.Logger) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger,
		workers: workers,
		inbox:   make(chan envelope),
		done:    make(chan struct{}),
	}
}

// Start launches the workers. They run until ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started {
		return
	}
	s.started = true

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work(ctx)
	}
	logging.Info(s.logger, "fetch service started", slog.Int("workers", s.workers))
}

// Stop halts the workers and waits for in-flight fetches to finish or ctx to end.
func (s *Service) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
	})

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		logging.Info(s.logger, "fetch service stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch hands msg to a worker. It blocks until a worker accepts the message,
// ctx ends, or the service stops.
func (s *Service) Dispatch(ctx context.Context, msg Message, reply func(Reply)) error {
	if reply == nil {
		return errors.New("fetch dispatch: nil reply callback")
	}
	select {
	case <-s.done:
		return ErrServiceStopped
	default:
	}

	select {
	case s.inbox <- envelope{ctx: ctx, msg: msg, reply: reply}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrServiceStopped
	}
}

func (s *Service) work(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case env := <-s.inbox:
			s.handle(env)
		}
	}
}

func (s *Service) handle(env envelope) {
	switch env.msg.Type {
	case MessageFetchPage:
		if s.fetcher == nil {
			env.reply(Reply{Err: ErrFetcherUnavailable})
			return
		}
		body, err := s.fetcher.FetchPage(env.ctx, env.msg.URL)
		env.reply(Reply{Body: body, Err: err})
	default:
		env.reply(Reply{Err: fmt.Errorf("unsupported message type %q", env.msg.Type)})
	}
}
