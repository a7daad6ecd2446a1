package fetch

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

// MessageFetchPage is the only message type the fetch service understands.
const MessageFetchPage = "fetchPage"

// Message is a request sent across the fetch boundary.
type Message struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Reply is the single answer delivered for a Message.
type Reply struct {
	Body string
	Err  error
}

// Dispatcher delivers a message to a fetch service. The reply callback is
// invoked at most once, possibly from another goroutine.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message, reply func(Reply)) error
}

// Gateway adapts a callback-style Dispatcher to the blocking Fetcher contract.
// It never retries, caches or inspects bodies; every failure surfaces as a
// *TransportError.
type Gateway struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewGateway constructs a Gateway over dispatcher.
func NewGateway(dispatcher Dispatcher, logger *slog.Logger) *Gateway {
	return &Gateway{dispatcher: dispatcher, logger: logger}
}

// FetchPage sends a fetchPage message and waits for its reply or for ctx to end.
func (g *Gateway) FetchPage(ctx context.Context, url string) (string, error) {
	if g == nil || g.dispatcher == nil {
		return "", &TransportError{URL: url, Err: ErrFetcherUnavailable}
	}

	replies := make(chan Reply, 1)
	msg := Message{Type: MessageFetchPage, URL: url}
	err := g.dispatcher.Dispatch(ctx, msg, func(r Reply) {
		select {
		case replies <- r:
		default:
		}
	})
	if err != nil {
		logging.Warn(logging.FromContext(ctx, g.logger), "fetch dispatch failed", slog.String(logging.FieldURL, url), "error", err)
		return "", wrapTransport(url, err)
	}

	select {
	case <-ctx.Done():
		return "", wrapTransport(url, ctx.Err())
	case r := <-replies:
		if r.Err != nil {
			return "", wrapTransport(url, r.Err)
		}
		return r.Body, nil
	}
}
