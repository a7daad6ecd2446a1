// Package cache holds the session-scoped stores the resolver reads through and
// writes back to. Stores live as long as the session: the process for the
// memory backend, the session TTL for redis.
package cache

import (
	"context"
	"errors"
)

// ErrBackendClosed is returned by a backend after Close.
var ErrBackendClosed = errors.New("cache backend closed")

// Backend is a key/value service addressed by store name and key.
type Backend interface {
	Get(ctx context.Context, store, key string) ([]byte, bool, error)
	Set(ctx context.Context, store, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}
