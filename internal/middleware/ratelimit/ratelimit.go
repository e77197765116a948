// Package ratelimit throttles requests per client with a fixed window.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter admits at most Limit requests per Window for each key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time

	rejected atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

type Config struct {
	Limit           int
	Window          time.Duration
	CleanupInterval time.Duration
}

// NewLimiter starts a limiter. A non-positive Window defaults to one minute.
func NewLimiter(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	l := &Limiter{
		clients: make(map[string]*window),
		limit:   cfg.Limit,
		window:  cfg.Window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go l.cleanupLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow records a request for key. When it is rejected, retryAfter is the
// time until the key's window resets.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.clients[key]
	if !exists || now.Sub(w.start) >= l.window {
		l.clients[key] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= l.limit {
		l.rejected.Add(1)
		return false, w.start.Add(l.window).Sub(now)
	}
	w.count++
	return true, 0
}

// Sweep forgets keys whose window has ended.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.window {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}

// Rejected returns the number of refused requests so far.
func (l *Limiter) Rejected() int64 {
	return l.rejected.Load()
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware limits requests by the key extractKey returns. Refused requests
// get a Retry-After header and are handed to onLimit.
func (l *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.Allow(extractKey(r))
			if !ok {
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
