package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/segyhp/sacco-engine/internal/auth"
	"github.com/segyhp/sacco-engine/pkg/response"
)

const (
	cleanupInterval = 5 * time.Minute
	limiterTTL      = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictStale()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) evictStale() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	evicted := 0
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, key)
			evicted++
		}
	}
	return evicted
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware keys authenticated callers by token subject and everyone else by remote IP.
func (rl *RateLimiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !rl.Allow(key) {
				logger.Warn("rate limit exceeded", zap.String("client", key), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "1")
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
				response.TooManyRequests(w, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		return "sub:" + principal.Subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
