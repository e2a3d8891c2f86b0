package logger

import (
	"sync"
	"time"
)

// Throttle lets a caller log a recurring line at most once per interval per
// key, e.g. the race status that is computed on every scheduler tick.
type Throttle struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now, last: map[string]time.Time{}}
}

// Allow reports whether key may be logged now, and if so starts a new interval.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if last, ok := t.last[key]; ok && now.Sub(last) < t.interval {
		return false
	}
	t.last[key] = now
	return true
}

// Info logs through l when key is allowed.
func (t *Throttle) Info(l Logger, key, msg string, keysAndValues ...any) {
	if t.Allow(key) {
		l.Info(msg, keysAndValues...)
	}
}
