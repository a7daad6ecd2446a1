package teststubs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// StubFetcher is a test double for fetch.Fetcher serving canned bodies by URL.
type StubFetcher struct {
	Pages map[string]string
	Errs  map[string]error
	Err   error
	// Stall blocks every fetch until its context is done.
	Stall  bool
	Calls  atomic.Int32
	Notify chan struct{}

	mu   sync.Mutex
	urls []string
}

// FetchPage returns the configured body for url, recording the call.
// Unknown URLs return an empty body, like a site that renders nothing useful.
func (s *StubFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	s.mu.Lock()
	s.urls = append(s.urls, url)
	s.mu.Unlock()

	if s.Stall {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	if err, ok := s.Errs[url]; ok {
		return "", err
	}
	return s.Pages[url], nil
}

// URLs returns the fetched URLs in call order.
func (s *StubFetcher) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

// Fetched reports whether url was requested at least once.
func (s *StubFetcher) Fetched(url string) bool {
	for _, u := range s.URLs() {
		if u == url {
			return true
		}
	}
	return false
}

// Reset clears the call log.
func (s *StubFetcher) Reset() {
	s.mu.Lock()
	s.urls = nil
	s.mu.Unlock()
	s.Calls.Store(0)
}

// String summarizes the stub for failure messages.
func (s *StubFetcher) String() string {
	return fmt.Sprintf("StubFetcher(calls=%d)", s.Calls.Load())
}
