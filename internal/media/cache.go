package media

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	duration float64
	expires  time.Time
}

// CachingProber wraps another Prober with a TTL-based in-memory cache keyed
// by file path, so retried uploads don't re-run ffprobe.
type CachingProber struct {
	base Prober
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingProber returns a Prober that caches probes for the provided TTL.
func NewCachingProber(base Prober, ttl time.Duration) *CachingProber {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingProber{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Probe returns a cached duration when available, otherwise it delegates to
// the underlying prober and stores the result.
func (c *CachingProber) Probe(ctx context.Context, path string) (float64, error) {
	if c == nil || c.base == nil {
		return 0, ErrProberUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[path]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.duration, nil
	}

	duration, err := c.base.Probe(ctx, path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.items[path] = cacheEntry{duration: duration, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return duration, nil
}
