package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/preston-bernstein/ntrp-rating-service/internal/cache"
	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/fetch"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
	"github.com/preston-bernstein/ntrp-rating-service/internal/sources"
	"github.com/preston-bernstein/ntrp-rating-service/internal/teststubs"
	"github.com/preston-bernstein/ntrp-rating-service/internal/testutil"
)

const playerID = "12345"

var testURLs = sources.New("https://roster.test", "https://ratings.test")

type harness struct {
	engine   *Engine
	fetcher  *teststubs.StubFetcher
	backend  *cache.MemoryBackend
	stores   *cache.Stores
	recorder *metrics.Recorder
}

func newHarness(t *testing.T, candidateTier bool) *harness {
	t.Helper()
	fetcher := &teststubs.StubFetcher{Pages: map[string]string{}, Errs: map[string]error{}}
	backend := cache.NewMemoryBackend()
	recorder := metrics.NewRecorder()
	stores := cache.NewStores(backend, cache.Options{CandidatePagesEnabled: candidateTier, Recorder: recorder})
	engine := NewEngine(Config{
		URLs:     testURLs,
		Fetcher:  fetcher,
		Stores:   stores,
		Recorder: recorder,
	})
	return &harness{engine: engine, fetcher: fetcher, backend: backend, stores: stores, recorder: recorder}
}

func (h *harness) roster(name, location string) {
	h.fetcher.Pages[testURLs.RosterPage(playerID)] = testutil.RosterPage(name, "4.5", location)
}

func (h *harness) profile(s int, entries ...testutil.ProfileEntry) string {
	url := testURLs.ProfilePage("Jane", "Doe", s)
	h.fetcher.Pages[url] = testutil.ProfilePage(entries...)
	return url
}

func (h *harness) fillProfiles(location string) {
	for s := 1; s <= MaxProbes; s++ {
		h.profile(s, testutil.ProfileEntry{Name: "Jane Doe", Location: location, Rating: "3.0000 C"})
	}
}

func (h *harness) cachedRecord(t *testing.T) (domain.ResolvedRecord, bool) {
	t.Helper()
	rec, ok, err := h.stores.Ratings.Get(context.Background(), playerID)
	if err != nil {
		t.Fatalf("rating cache read: %v", err)
	}
	return rec, ok
}

func TestResolveMatchesSecondCandidate(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.profile(1, testutil.ProfileEntry{Name: "Jane Doe", Location: "Oakland", Rating: "3.5000 C"})
	matchURL := h.profile(2, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"})

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Resolved() || res.FromCache {
		t.Fatalf("expected fresh resolved outcome, got %+v", res)
	}
	if res.Record.URL != matchURL || res.Record.Rating != "4.5000 S" {
		t.Fatalf("unexpected record %+v", res.Record)
	}
	if res.Probes != 2 {
		t.Fatalf("expected 2 probes, got %d", res.Probes)
	}
	if got := h.fetcher.Calls.Load(); got != 3 {
		t.Fatalf("expected 3 fetches (roster + 2 probes), got %d", got)
	}

	rec, ok := h.cachedRecord(t)
	if !ok || rec != res.Record {
		t.Fatalf("expected record cached, got %+v ok=%v", rec, ok)
	}
	if h.recorder.Resolutions("resolved") != 1 {
		t.Fatalf("expected resolution recorded")
	}
}

func TestResolveIsIdempotentFromCache(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.profile(1, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"})

	first, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	h.fetcher.Reset()

	second, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if h.fetcher.Calls.Load() != 0 {
		t.Fatalf("expected no fetches on cached resolve, got %v", h.fetcher.URLs())
	}
	if !second.FromCache || second.Record != first.Record {
		t.Fatalf("expected cached record %+v, got %+v", first.Record, second)
	}
}

func TestResolveStopsAtFirstMatch(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")
	h.profile(3, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.0000 A"})

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Probes != 3 || res.Record.Rating != "4.0000 A" {
		t.Fatalf("expected match at s=3, got %+v", res)
	}
	for s := 4; s <= MaxProbes; s++ {
		if url := testURLs.ProfilePage("Jane", "Doe", s); h.fetcher.Fetched(url) {
			t.Fatalf("probe %d should not have been fetched", s)
		}
	}
}

func TestResolveProbesSequentially(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")

	if _, err := h.engine.Resolve(context.Background(), playerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls := h.fetcher.URLs()
	if len(urls) != MaxProbes+1 {
		t.Fatalf("expected roster + %d probes, got %d", MaxProbes, len(urls))
	}
	if urls[0] != testURLs.RosterPage(playerID) {
		t.Fatalf("expected roster fetched first, got %s", urls[0])
	}
	for i, url := range urls[1:] {
		if want := testURLs.ProfilePage("Jane", "Doe", i+1); url != want {
			t.Fatalf("probe %d: expected %s, got %s", i+1, want, url)
		}
	}
}

func TestResolveUnresolvedAfterAllProbes(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resolved() || res.Probes != MaxProbes {
		t.Fatalf("expected unresolved after %d probes, got %+v", MaxProbes, res)
	}
	if res.Display() != domain.UnknownRating {
		t.Fatalf("expected placeholder display, got %q", res.Display())
	}
	if _, ok := h.cachedRecord(t); ok {
		t.Fatalf("unresolved outcome must not be cached")
	}
	if h.fetcher.Fetched(testURLs.ProfilePage("Jane", "Doe", MaxProbes+1)) {
		t.Fatalf("probe beyond the bound was fetched")
	}
}

func TestResolveLocationIsCaseSensitive(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("san jose")

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resolved() {
		t.Fatalf("case-different location must not match: %+v", res)
	}
}

func TestResolveMissingRosterLocationStillProbes(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "")
	h.fillProfiles("")

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resolved() || res.Probes != MaxProbes {
		t.Fatalf("expected unresolved after full probe, got %+v", res)
	}
}

func TestResolveMatchWithoutRatingIsUnresolved(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.profile(1, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose"})

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resolved() || res.Probes != 1 {
		t.Fatalf("expected unresolved after matching probe 1, got %+v", res)
	}
	if _, ok := h.cachedRecord(t); ok {
		t.Fatalf("record without rating must not be cached")
	}
}

func TestResolveUsesCachedRosterPage(t *testing.T) {
	h := newHarness(t, false)
	h.profile(1, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"})
	if err := h.stores.RosterPages.Set(context.Background(), playerID, testutil.RosterPage("Jane Doe", "4.5", "San Jose")); err != nil {
		t.Fatalf("seed roster cache: %v", err)
	}

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Resolved() {
		t.Fatalf("expected resolved, got %+v", res)
	}
	if h.fetcher.Fetched(testURLs.RosterPage(playerID)) {
		t.Fatalf("roster page should come from cache")
	}
}

func TestResolveCachesRosterPage(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")

	if _, err := h.engine.Resolve(context.Background(), playerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, ok, err := h.stores.RosterPages.Get(context.Background(), playerID)
	if err != nil || !ok || !strings.Contains(body, "Jane Doe") {
		t.Fatalf("expected roster page cached, ok=%v err=%v", ok, err)
	}
}

func TestResolveIgnoresIncompleteCachedRecord(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.profile(1, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"})
	_ = h.stores.Ratings.Set(context.Background(), playerID, domain.ResolvedRecord{URL: "https://stale.test"})

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FromCache || res.Record.Rating != "4.5000 S" {
		t.Fatalf("expected fresh resolution, got %+v", res)
	}
}

func TestResolveProbeTransportErrorAborts(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")
	failing := testURLs.ProfilePage("Jane", "Doe", 2)
	h.fetcher.Errs[failing] = &fetch.TransportError{URL: failing, Err: errors.New("timeout")}

	_, err := h.engine.Resolve(context.Background(), playerID)
	tErr, ok := fetch.AsTransportError(err)
	if !ok || tErr.URL != failing {
		t.Fatalf("expected transport error for %s, got %v", failing, err)
	}
	if h.fetcher.Fetched(testURLs.ProfilePage("Jane", "Doe", 3)) {
		t.Fatalf("probing must stop after a transport error")
	}
	if _, ok := h.cachedRecord(t); ok {
		t.Fatalf("nothing should be cached after a transport error")
	}
	if h.recorder.Resolutions("failed") != 1 {
		t.Fatalf("expected failed resolution recorded")
	}
}

func TestResolveRosterTransportErrorAborts(t *testing.T) {
	h := newHarness(t, false)
	h.fetcher.Err = errors.New("connection refused")

	res, err := h.engine.Resolve(context.Background(), playerID)
	tErr, ok := fetch.AsTransportError(err)
	if !ok {
		t.Fatalf("expected plain fetch errors to surface as transport errors, got %v", err)
	}
	if tErr.URL != testURLs.RosterPage(playerID) {
		t.Fatalf("unexpected url %s", tErr.URL)
	}
	if res.Resolved() {
		t.Fatalf("expected no record on failure")
	}
	if _, ok, _ := h.stores.RosterPages.Get(context.Background(), playerID); ok {
		t.Fatalf("failed roster fetch must not be cached")
	}
}

func TestResolveWithoutFetcher(t *testing.T) {
	engine := NewEngine(Config{URLs: testURLs})

	_, err := engine.Resolve(context.Background(), playerID)
	if !errors.Is(err, fetch.ErrFetcherUnavailable) {
		t.Fatalf("expected ErrFetcherUnavailable, got %v", err)
	}
}

func TestResolveCandidateTierDisabledIgnoresCachedPage(t *testing.T) {
	h := newHarness(t, false)
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")

	seeded := cache.NewStoreWithCodec(h.backend, cache.CandidatePageStore, cache.CandidatePageCodec(), nil, nil)
	_ = seeded.Set(context.Background(), playerID, domain.CandidatePage{
		URL:  "https://ratings.test/cached",
		Body: testutil.ProfilePage(testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"}),
	})

	res, err := h.engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resolved() || res.Probes != MaxProbes {
		t.Fatalf("disabled tier must be ignored, got %+v", res)
	}
}

func TestResolveCandidateTierEnabled(t *testing.T) {
	h := newHarness(t, true)
	h.roster("Jane Doe", "San Jose")
	matchURL := h.profile(1, testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"})

	if _, err := h.engine.Resolve(context.Background(), playerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page, ok, err := h.stores.CandidatePages.Get(context.Background(), playerID)
	if err != nil || !ok || page.URL != matchURL {
		t.Fatalf("expected matched page cached, got %+v ok=%v err=%v", page, ok, err)
	}

	// With no rating record yet, a cached page replaces probing.
	fresh := cache.NewMemoryBackend()
	stores := cache.NewStores(fresh, cache.Options{CandidatePagesEnabled: true})
	_ = stores.RosterPages.Set(context.Background(), playerID, testutil.RosterPage("Jane Doe", "4.5", "San Jose"))
	_ = stores.CandidatePages.Set(context.Background(), playerID, page)
	fetcher := &teststubs.StubFetcher{}
	engine := NewEngine(Config{URLs: testURLs, Fetcher: fetcher, Stores: stores})

	res, err := engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Resolved() || res.Record.URL != matchURL || res.Record.Rating != "4.5000 S" {
		t.Fatalf("expected resolution from cached page, got %+v", res)
	}
	if fetcher.Calls.Load() != 0 {
		t.Fatalf("expected no fetches, got %v", fetcher.URLs())
	}
}

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (brokenBackend) Set(context.Context, string, string, []byte) error {
	return errors.New("backend down")
}
func (brokenBackend) Ping(context.Context) error { return errors.New("backend down") }
func (brokenBackend) Close() error               { return nil }

func TestResolveDegradesWhenCacheFails(t *testing.T) {
	fetcher := &teststubs.StubFetcher{Pages: map[string]string{
		testURLs.RosterPage(playerID): testutil.RosterPage("Jane Doe", "4.5", "San Jose"),
		testURLs.ProfilePage("Jane", "Doe", 1): testutil.ProfilePage(
			testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"},
		),
	}}
	logger, buf := testutil.NewBufferLogger()
	engine := NewEngine(Config{
		URLs:    testURLs,
		Fetcher: fetcher,
		Stores:  cache.NewStores(brokenBackend{}, cache.Options{}),
		Logger:  logger,
	})

	res, err := engine.Resolve(context.Background(), playerID)
	if err != nil {
		t.Fatalf("cache failures must not fail the resolution: %v", err)
	}
	if !res.Resolved() {
		t.Fatalf("expected resolved, got %+v", res)
	}
	if !strings.Contains(buf.String(), "rating cache write failed") {
		t.Fatalf("expected write failure logged, got %s", buf.String())
	}
}

func TestResolveLogsOutcome(t *testing.T) {
	h := newHarness(t, false)
	logger, buf := testutil.NewBufferLogger()
	h.engine.logger = logger
	h.roster("Jane Doe", "San Jose")
	h.fillProfiles("Oakland")

	if _, err := h.engine.Resolve(context.Background(), playerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "player_id=12345") || !strings.Contains(out, "outcome=unresolved") {
		t.Fatalf("expected outcome log line, got %s", out)
	}
}

func TestResolveNonUTF8RosterPageProbesSameURLsFromCache(t *testing.T) {
	h := newHarness(t, false)
	h.fetcher.Pages[testURLs.RosterPage(playerID)] = testutil.RosterPage("Jos\xe9 Diaz", "4.5", "San Jose")

	if _, err := h.engine.Resolve(context.Background(), playerID); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	first := h.fetcher.URLs()
	h.fetcher.Reset()

	if _, err := h.engine.Resolve(context.Background(), playerID); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	second := h.fetcher.URLs()

	if len(first) != MaxProbes+1 || len(second) != MaxProbes {
		t.Fatalf("expected a roster fetch plus %d probes, then probes only; got %d and %d", MaxProbes, len(first), len(second))
	}
	for i, url := range second {
		if url != first[i+1] {
			t.Fatalf("probe %d changed after roster page came from cache: %q vs %q", i+1, first[i+1], url)
		}
	}
	if want := testURLs.ProfilePage("Jos\xe9", "Diaz", 1); second[0] != want {
		t.Fatalf("expected first probe %q, got %q", want, second[0])
	}
}
