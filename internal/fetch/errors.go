package fetch

import (
	"errors"
	"fmt"
)

// ErrFetcherUnavailable is returned when no fetcher is configured.
var ErrFetcherUnavailable = errors.New("fetcher unavailable")

// TransportError reports that a page could not be obtained.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: transport failed", e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsTransportError attempts to unwrap an error into a TransportError.
func AsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

// StatusError captures an upstream HTTP status the fetcher refuses to treat as a page.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

func wrapTransport(url string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsTransportError(err); ok {
		return err
	}
	return &TransportError{URL: url, Err: err}
}
