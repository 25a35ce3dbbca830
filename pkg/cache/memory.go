package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is an optional in-process cache tier backed by ristretto. It sits
// in front of the Redis service to absorb hot keys.
type Memory struct {
	rc *ristretto.Cache[string, []byte]
}

// NewMemory creates a memory tier holding up to maxEntries entries (each
// entry has a cost of 1).
func NewMemory(maxEntries int64) (*Memory, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{rc: rc}, nil
}

// Get retrieves a value by key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.rc.Get(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// Set stores a value under key with the given TTL.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.rc.SetWithTTL(key, bytes.Clone(val), 1, ttl)
	m.rc.Wait()
}

// Delete removes a single key.
func (m *Memory) Delete(_ context.Context, key string) {
	m.rc.Del(key)
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.rc.Clear()
}

// Close releases the underlying cache.
func (m *Memory) Close() {
	m.rc.Close()
}
