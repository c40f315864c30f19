// Package middleware provides the HTTP middleware the API is assembled from.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// Limiter decides whether one more request for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error)
}

// bucket is a fixed-window request count for one key.
type bucket struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps fixed-window counters in process memory. It suits a
// single instance; use a shared store when running several.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryLimiter starts a limiter whose expired buckets are evicted
// every sweep interval. Call Close to stop the sweeper.
func NewMemoryLimiter(sweep time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweep > 0 {
		go l.sweepLoop(sweep)
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(window)}
		l.buckets[key] = b
	}

	b.count++
	return b.count <= max, nil
}

// Close stops the background sweeper.
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit allows max requests per window per client IP, as resolved by
// proxies. name separates the counters of different limiters sharing one
// store. A failing store lets the request through.
func RateLimit(l Limiter, name string, max int, window time.Duration, proxies TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + name + ":" + proxies.ClientIP(r)

			ok, err := l.Allow(r.Context(), key, max, window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("rate limit store unavailable", "limiter", name, "error", err)
				ok = true
			}
			if !ok {
				metrics.RateLimited.WithLabelValues(name).Inc()
				w.Header().Set("Retry-After", retryAfter(window))
				response.Error(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
