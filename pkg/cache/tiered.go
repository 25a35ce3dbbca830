package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// promoteTTL bounds how long a value promoted from Redis may live in the
// memory tier; the remaining Redis TTL is not known at promotion time.
const promoteTTL = 30 * time.Second

// Tiered layers the in-process memory cache in front of the Redis service.
// Reads check memory, then Redis, then the loader; writes and invalidations
// touch both layers. Admin operations delegate to the Redis service.
type Tiered struct {
	mem *Memory
	svc *Service

	mu    sync.Mutex
	loads map[string]*call
}

// call deduplicates concurrent loads for the same key.
type call struct {
	wg  sync.WaitGroup
	val []byte
	err error
}

// NewTiered creates a two-level cache.
func NewTiered(mem *Memory, svc *Service) *Tiered {
	return &Tiered{
		mem:   mem,
		svc:   svc,
		loads: make(map[string]*call),
	}
}

// Get checks memory, then Redis. A Redis hit is promoted into memory.
// Memory hits count against the same lookup counters as Redis hits.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.mem.Get(ctx, key); ok {
		t.svc.recordHit(ctx, "memory")
		return v, true
	}

	v, ok := t.svc.Get(ctx, key)
	if !ok {
		return nil, false
	}
	t.mem.Set(ctx, key, v, promoteTTL)
	return v, true
}

// Set writes the value to both layers.
func (t *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	t.svc.Set(ctx, key, val, ttl)
	t.mem.Set(ctx, key, val, ttl)
}

// Delete removes the key from both layers. The memory entry is dropped even
// when Redis is unreachable so a later reconnect cannot resurrect it.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	t.mem.Delete(ctx, key)
	return t.svc.Delete(ctx, key)
}

// GetOrCompute follows the memory, Redis, loader order and deduplicates
// concurrent loads for the same key.
func (t *Tiered) GetOrCompute(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if v, ok := t.Get(ctx, key); ok {
		return v, true, nil
	}

	t.mu.Lock()
	if c, ok := t.loads[key]; ok {
		t.mu.Unlock()
		c.wg.Wait()
		if c.err != nil {
			return nil, false, c.err
		}
		return bytes.Clone(c.val), false, nil
	}

	c := &call{}
	c.wg.Add(1)
	t.loads[key] = c
	t.mu.Unlock()

	c.val, c.err = loader(ctx)
	if c.err == nil {
		t.Set(ctx, key, c.val, ttl)
	}
	c.wg.Done()

	t.mu.Lock()
	delete(t.loads, key)
	t.mu.Unlock()

	if c.err != nil {
		return nil, false, c.err
	}
	return bytes.Clone(c.val), false, nil
}

// Clear flushes Redis and drops the memory tier.
func (t *Tiered) Clear(ctx context.Context) error {
	t.mem.Clear()
	return t.svc.Clear(ctx)
}

// Keys lists keys from the Redis backend.
func (t *Tiered) Keys(ctx context.Context) ([]string, error) {
	return t.svc.Keys(ctx)
}

// Stats returns the lookup counters.
func (t *Tiered) Stats(ctx context.Context) Stats {
	return t.svc.Stats(ctx)
}

// HealthCheck reports the Redis backend health.
func (t *Tiered) HealthCheck(ctx context.Context) Health {
	return t.svc.HealthCheck(ctx)
}

// Reconnect re-establishes the Redis connection.
func (t *Tiered) Reconnect(ctx context.Context) error {
	return t.svc.Reconnect(ctx)
}
