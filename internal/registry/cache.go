package registry

import (
	"sync"
	"time"
)

// directoryCache is a single-entry TTL cache with last-known-good
// semantics. It keeps the most recent successful payload even after it
// expires, so a failed refresh can fall back to it. The zero value means
// "never fetched": there is nothing to fall back to yet.
type directoryCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	lastGood  []Droplet
	hasValue  bool
	fetchedAt time.Time
}

func newDirectoryCache(ttl time.Duration) *directoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &directoryCache{ttl: ttl}
}

// fresh returns the cached payload while it is within its TTL.
func (c *directoryCache) fresh(now time.Time) ([]Droplet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasValue || now.Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}

	return c.lastGood, true
}

// stale returns the last successful payload regardless of age.
func (c *directoryCache) stale() ([]Droplet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastGood, c.hasValue
}

func (c *directoryCache) store(droplets []Droplet, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastGood = droplets
	c.hasValue = true
	c.fetchedAt = now
}
