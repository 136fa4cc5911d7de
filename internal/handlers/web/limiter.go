package web

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterSet hands out one token bucket per session
type limiterSet struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idle     time.Duration
	limiters map[string]*sessionLimiter
}

type sessionLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterSet(limit rate.Limit, burst int, idle time.Duration) *limiterSet {
	return &limiterSet{
		limit:    limit,
		burst:    burst,
		idle:     idle,
		limiters: make(map[string]*sessionLimiter),
	}
}

// Allow reports whether key may send another message now
func (l *limiterSet) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[key]
	if !ok {
		l.pruneLocked(now)
		entry = &sessionLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

func (l *limiterSet) pruneLocked(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idle {
			delete(l.limiters, key)
		}
	}
}
