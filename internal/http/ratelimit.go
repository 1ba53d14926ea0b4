package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// rateLimiter allows limit mutations per client IP in each fixed window.
// Idle clients are swept from allow itself, at most once per window, so
// there is no background goroutine to stop.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*ipWindow
	lastSweep time.Time
}

type ipWindow struct {
	start time.Time
	seen  time.Time
	count int
}

// idleWindows is how many windows a client may stay quiet before it is forgotten.
const idleWindows = 10

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{limit: limit, window: window, now: time.Now, windows: map[string]*ipWindow{}}
}

// sweep drops idle clients and reports how many went. Callers hold mu.
func (rl *rateLimiter) sweep(now time.Time) int {
	rl.lastSweep = now
	cutoff := now.Add(-idleWindows * rl.window)
	n := 0
	for ip, w := range rl.windows {
		if w.seen.Before(cutoff) {
			delete(rl.windows, ip)
			n++
		}
	}
	return n
}

func (rl *rateLimiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.sweep(rl.now())
}

func (rl *rateLimiter) activeClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// allow reports whether clientIP may make another request in its current
// window. Rejections are counted in metrics when it is not nil.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(now)
	}

	w := rl.windows[clientIP]
	if w == nil || now.Sub(w.start) >= rl.window {
		w = &ipWindow{start: now}
		rl.windows[clientIP] = w
	}
	w.seen = now
	if w.count >= rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	w.count++
	return true
}
