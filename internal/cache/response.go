// Package cache memoizes outbound provider payloads for a freshness window.
package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_cache_requests_total",
	Help: "Response cache lookups by result (hit, miss, error).",
}, []string{"result"})

// Fetcher produces a fresh payload on a cache miss.
type Fetcher func() (json.RawMessage, error)

// Entry is one memoized payload.
type Entry struct {
	Key      string
	Payload  json.RawMessage
	StoredAt time.Time
}

// ResponseCache keeps at most one entry per key. Entries are only ever
// replaced by a successful re-fetch; stale entries stay until then.
//
// The fetch itself runs outside the lock, so two concurrent misses for the
// same key both call their fetcher and the last one to finish wins.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// New creates an empty ResponseCache.
func New(opts ...Option) *ResponseCache {
	c := &ResponseCache{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the payload stored under key if it is younger than ttl.
// Otherwise it calls fetch, stores a successful result under key and returns
// it. A failed fetch returns the error and leaves any previous entry intact.
func (c *ResponseCache) GetOrFetch(key string, fetch Fetcher, ttl time.Duration) (json.RawMessage, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.StoredAt) < ttl {
		requestsTotal.WithLabelValues("hit").Inc()
		return entry.Payload, nil
	}

	payload, err := fetch()
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	requestsTotal.WithLabelValues("miss").Inc()

	c.mu.Lock()
	c.entries[key] = Entry{Key: key, Payload: payload, StoredAt: c.now()}
	c.mu.Unlock()

	return payload, nil
}

// Lookup returns the entry stored under key regardless of age.
func (c *ResponseCache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Len returns the number of stored entries.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
