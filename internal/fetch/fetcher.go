// Package fetch retrieves remote pages for the resolver.
//
// The resolver only sees the Fetcher contract. In production it is a Gateway
// that hands "fetchPage" messages to a fetch Service and waits for the reply;
// the Service owns the actual HTTP transport.
package fetch

import "context"

// Fetcher fetches a page body by URL.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}
