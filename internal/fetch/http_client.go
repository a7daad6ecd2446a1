package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	defaultUserAgent   = "ntrp-rating-service/1.0"
	maxBodyBytes       = 5 << 20
)

// ErrBodyTooLarge is returned when a page exceeds the body cap.
var ErrBodyTooLarge = errors.New("page body too large")

// HTTPConfig controls how HTTPClient reaches the remote sites.
type HTTPConfig struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

// HTTPClient fetches pages over HTTP.
type HTTPClient struct {
	httpClient httpDoer
	userAgent  string
}

// NewHTTPClient constructs an HTTP fetcher with the provided configuration.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	return &HTTPClient{
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		userAgent:  resolveUserAgent(cfg.UserAgent),
	}
}

// FetchPage GETs url and returns the body. Throttling and server errors are
// failures; any other status still carries a page worth parsing.
func (c *HTTPClient) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if failedStatus(resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(snippet))}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(raw) > maxBodyBytes {
		return "", fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, maxBodyBytes)
	}
	return decodeBody(raw, resp.Header.Get("Content-Type"))
}

// decodeBody converts the page to UTF-8 using the Content-Type charset, a
// <meta> declaration, or sniffing, in that order.
func decodeBody(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(decoded), nil
}

func failedStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
