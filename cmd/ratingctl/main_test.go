package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/preston-bernstein/ntrp-rating-service/internal/app/ratings"
	"github.com/preston-bernstein/ntrp-rating-service/internal/cache"
	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/sources"
	"github.com/preston-bernstein/ntrp-rating-service/internal/teststubs"
	"github.com/preston-bernstein/ntrp-rating-service/internal/testutil"
)

const (
	testRosterBase  = "https://roster.test"
	testRatingsBase = "https://ratings.test/adult"
)

func runCLI(t *testing.T, opts ratings.Options, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ROSTER_BASE_URL", testRosterBase)
	t.Setenv("RATINGS_BASE_URL", testRatingsBase)
	t.Setenv("FETCH_MIN_INTERVAL", "0s")
	t.Setenv("CACHE_BACKEND", "memory")

	cmd := newRootCommandWithOptions(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func stubFetcher() *teststubs.StubFetcher {
	urls := sources.New(testRosterBase, testRatingsBase)
	return &teststubs.StubFetcher{
		Pages: map[string]string{
			urls.RosterPage("12345"): testutil.RosterPage("Jane Doe", "4.5", "San Jose"),
			urls.ProfilePage("Jane", "Doe", 1): testutil.ProfilePage(
				testutil.ProfileEntry{Name: "Jane Doe", Location: "San Jose", Rating: "4.5000 S"},
			),
		},
		Errs: map[string]error{
			urls.RosterPage("999"): errors.New("connection reset"),
		},
	}
}

func writePage(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return path
}

func TestRootCommandPrintsHelp(t *testing.T) {
	out, err := runCLI(t, ratings.Options{})
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if !strings.Contains(out, "resolve") || !strings.Contains(out, "extract") {
		t.Fatalf("expected help listing subcommands, got %q", out)
	}
}

func TestResolvePrintsOneLinePerRef(t *testing.T) {
	opts := ratings.Options{Fetcher: stubFetcher(), Backend: cache.NewMemoryBackend()}
	out, err := runCLI(t, opts, "resolve", "12345", "https://leagues.ustanorcal.com/playermatches.asp?id=12345")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "12345\t4.5000 S\tresolved\t") {
			t.Fatalf("unexpected line %q", line)
		}
	}
}

func TestResolveUnresolvedShowsPlaceholder(t *testing.T) {
	opts := ratings.Options{Fetcher: stubFetcher(), Backend: cache.NewMemoryBackend()}
	out, err := runCLI(t, opts, "resolve", "555")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := "555\t" + domain.UnknownRating + "\tunresolved\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestResolveReportsFailures(t *testing.T) {
	opts := ratings.Options{Fetcher: stubFetcher(), Backend: cache.NewMemoryBackend()}
	out, err := runCLI(t, opts, "resolve", "12345", "999", "not-a-player")
	if err == nil {
		t.Fatalf("expected error when lookups fail")
	}
	if !strings.Contains(err.Error(), "2 of 3 lookups failed") {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(out, "999\t"+domain.UnknownRating+"\tfailed\terror:") {
		t.Fatalf("expected failure line for 999, got %q", out)
	}
}

func TestResolveJSON(t *testing.T) {
	opts := ratings.Options{Fetcher: stubFetcher(), Backend: cache.NewMemoryBackend()}
	out, err := runCLI(t, opts, "resolve", "--json", "12345")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var got []resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Status != "resolved" || got[0].Rating != "4.5000 S" || got[0].Probes != 1 {
		t.Fatalf("unexpected result %+v", got[0])
	}
	if got[0].URL != sources.New(testRosterBase, testRatingsBase).ProfilePage("Jane", "Doe", 1) {
		t.Fatalf("unexpected url %q", got[0].URL)
	}
}

func TestResolveRequiresArgs(t *testing.T) {
	if _, err := runCLI(t, ratings.Options{}, "resolve"); err == nil {
		t.Fatalf("expected error without refs")
	}
}

func TestExtractRoster(t *testing.T) {
	path := writePage(t, testutil.RosterPage("Mary Ann Smith", "4.0", "Oakland"))
	out, err := runCLI(t, ratings.Options{}, "extract", "roster", path)
	if err != nil {
		t.Fatalf("extract roster: %v", err)
	}

	var got domain.RosterAttributes
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := domain.RosterAttributes{FirstName: "Mary", LastName: "Ann Smith", Location: "Oakland"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestExtractProfile(t *testing.T) {
	path := writePage(t, testutil.ProfilePage(
		testutil.ProfileEntry{Name: "Jane Doe", Location: "Fremont", Rating: "3.9800 C"},
	))
	out, err := runCLI(t, ratings.Options{}, "extract", "profile", path, "--first", "Jane", "--last", "Doe")
	if err != nil {
		t.Fatalf("extract profile: %v", err)
	}

	var got profileOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Location != "Fremont" || got.Rating != "3.9800 C" {
		t.Fatalf("unexpected attributes %+v", got)
	}
	if !got.Dynamic {
		t.Fatalf("expected 3.9800 C to be flagged dynamic")
	}
}

func TestExtractProfileFlagsPublishedRating(t *testing.T) {
	path := writePage(t, testutil.ProfilePage(
		testutil.ProfileEntry{Name: "Jane Doe", Location: "Fremont", Rating: "4.0C"},
	))
	out, err := runCLI(t, ratings.Options{}, "extract", "profile", path, "--first", "Jane", "--last", "Doe")
	if err != nil {
		t.Fatalf("extract profile: %v", err)
	}
	var got profileOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Rating != "4.0C" || got.Dynamic {
		t.Fatalf("expected published 4.0C rating, got %+v", got)
	}
}

func TestExtractProfileRequiresName(t *testing.T) {
	path := writePage(t, "<html></html>")
	if _, err := runCLI(t, ratings.Options{}, "extract", "profile", path); err == nil {
		t.Fatalf("expected error without --first/--last")
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := runCLI(t, ratings.Options{}, "extract", "roster", filepath.Join(t.TempDir(), "missing.html"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveRecordThenReplay(t *testing.T) {
	dir := t.TempDir()
	opts := ratings.Options{Fetcher: stubFetcher(), Backend: cache.NewMemoryBackend()}
	if _, err := runCLI(t, opts, "resolve", "--record", dir, "12345"); err != nil {
		t.Fatalf("record: %v", err)
	}

	out, err := runCLI(t, ratings.Options{Backend: cache.NewMemoryBackend()}, "resolve", "--replay", dir, "12345")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.HasPrefix(out, "12345\t4.5000 S\tresolved\t") {
		t.Fatalf("unexpected replay output %q", out)
	}
}
