package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

const pageFileExt = ".html"

// ErrPageNotRecorded is returned by a replay fetcher for a URL with no saved page.
var ErrPageNotRecorded = errors.New("page not recorded")

// PageFileName maps a URL to the file name used in a page directory. The
// scheme is dropped and every byte outside [A-Za-z0-9.-] becomes '_'.
func PageFileName(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	var b strings.Builder
	b.Grow(len(url) + len(pageFileExt))
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(pageFileExt)
	return b.String()
}

// replayFetcher serves pages previously saved under dir.
type replayFetcher struct {
	dir string
}

// NewReplayFetcher returns a Fetcher that reads pages saved by a recording
// fetcher instead of going to the network.
func NewReplayFetcher(dir string) Fetcher {
	return &replayFetcher{dir: dir}
}

func (f *replayFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(f.dir, PageFileName(url)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPageNotRecorded, url)
		}
		return "", err
	}
	return string(data), nil
}

// recordingFetcher saves every successfully fetched page under dir.
type recordingFetcher struct {
	next   Fetcher
	dir    string
	logger *slog.Logger
}

// NewRecordingFetcher wraps next and writes each fetched body to dir. Write
// failures are logged and never fail the fetch.
func NewRecordingFetcher(next Fetcher, dir string, logger *slog.Logger) Fetcher {
	return &recordingFetcher{next: next, dir: dir, logger: logger}
}

func (f *recordingFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	body, err := f.next.FetchPage(ctx, url)
	if err != nil {
		return body, err
	}
	if werr := f.save(url, body); werr != nil {
		logging.Warn(logging.FromContext(ctx, f.logger), "page record failed",
			slog.String(logging.FieldURL, url),
			"error", werr,
		)
	}
	return body, nil
}

func (f *recordingFetcher) save(url, body string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(f.dir, PageFileName(url))
	data := []byte(body)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return nil
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
