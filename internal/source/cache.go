package source

import (
	"context"
	"sync"
	"time"

	"github.com/whenToSleep/race-info-bot/internal/models"
)

// cached serves the last good snapshot for ttl. A failed reload is returned
// to the caller and the cache is left empty so the next call retries.
type cached struct {
	next Provider
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	snap     models.Snapshot
	loadedAt time.Time
	valid    bool
}

// WithCache wraps p with a TTL cache. A non-positive ttl returns p unchanged.
func WithCache(p Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return p
	}
	return &cached{next: p, ttl: ttl, now: time.Now}
}

func (c *cached) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if c.valid && now.Sub(c.loadedAt) < c.ttl {
		return c.snap, nil
	}
	snap, err := c.next.LoadSnapshot(ctx)
	if err != nil {
		c.valid = false
		c.snap = nil
		return nil, err
	}
	c.snap, c.loadedAt, c.valid = snap, now, true
	return snap, nil
}
