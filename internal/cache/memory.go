package cache

import (
	"context"
	"sync"
)

// MemoryBackend keeps every store in a thread-safe map for the life of the process.
type MemoryBackend struct {
	mu     sync.RWMutex
	stores map[string]map[string][]byte
	closed bool
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		stores: make(map[string]map[string][]byte),
	}
}

// Get returns a copy of the value stored under store/key.
func (m *MemoryBackend) Get(ctx context.Context, store, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrBackendClosed
	}

	val, ok := m.stores[store][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// Set stores a copy of value under store/key.
func (m *MemoryBackend) Set(ctx context.Context, store, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrBackendClosed
	}

	entries, ok := m.stores[store]
	if !ok {
		entries = make(map[string][]byte)
		m.stores[store] = entries
	}
	val := make([]byte, len(value))
	copy(val, value)
	entries[key] = val
	return nil
}

// Len returns the number of keys held in store.
func (m *MemoryBackend) Len(store string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores[store])
}

// Ping reports whether the backend is usable.
func (m *MemoryBackend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrBackendClosed
	}
	return nil
}

// Close drops every store; the session is over.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.stores = make(map[string]map[string][]byte)
	return nil
}
