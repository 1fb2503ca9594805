// Package cache provides a small byte cache used for derived, rebuildable data
// such as nearby-branch lookups and the sitemap. A Redis backend is used when
// configured; otherwise an in-process map with expiry serves the same contract.
//
// A cache never returns errors to callers: a backend failure is a miss.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache stores opaque values under string keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// GetJSON decodes a cached JSON value into v. A decode failure is a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) bool {
	b, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

// SetJSON stores v as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, b, ttl)
}

type entry struct {
	val []byte
	exp time.Time
}

const (
	// DefaultMaxEntries bounds a Memory cache when MaxEntries is unset.
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

// Memory is a process-local Cache. Expired entries are swept from Set at most
// once per minute, or immediately when the cache is full. When a sweep cannot
// make room an arbitrary entry is evicted.
type Memory struct {
	// MaxEntries caps the number of stored keys; <= 0 means DefaultMaxEntries.
	MaxEntries int

	mu        sync.Mutex
	items     map[string]entry
	now       func() time.Time
	nextSweep time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

// Get returns a copy of the value if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return nil, false
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true
}

// Set stores val; ttl <= 0 means no expiry.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	limit := m.limit()
	if !now.Before(m.nextSweep) || len(m.items) >= limit {
		m.sweep(now)
	}
	if _, exists := m.items[key]; !exists {
		for k := range m.items {
			if len(m.items) < limit {
				break
			}
			delete(m.items, k)
		}
	}
	e := entry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = now.Add(ttl)
	}
	m.items[key] = e
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// sweep drops expired entries. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}

func (m *Memory) limit() int {
	if m.MaxEntries > 0 {
		return m.MaxEntries
	}
	return DefaultMaxEntries
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}
