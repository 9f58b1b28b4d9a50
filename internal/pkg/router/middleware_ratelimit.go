package router

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// RateLimit configures the per-client-IP token bucket.
type RateLimit struct {
	// RPS is the sustained rate; zero or less disables throttling.
	RPS float64
	// Burst is the bucket size.
	Burst int
	// IdleTTL evicts buckets of clients not seen for this long.
	IdleTTL time.Duration
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen *atomic.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	swept   time.Time
}

func newIPLimiter(cfg RateLimit) *ipLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(int(cfg.RPS), 1)
	}

	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	return &ipLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   rate.Limit(cfg.RPS),
		burst:   burst,
		idleTTL: idle,
	}
}

func (l *ipLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idleTTL {
		l.evict(now)
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{
			limiter:  rate.NewLimiter(l.limit, l.burst),
			lastSeen: atomic.NewTime(now),
		}
		l.buckets[ip] = b
	}
	b.lastSeen.Store(now)

	return b.limiter
}

// evict drops idle buckets; callers hold l.mu.
func (l *ipLimiter) evict(now time.Time) {
	l.swept = now
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen.Load()) > l.idleTTL {
			delete(l.buckets, ip)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// middlewareRateLimit must run after middlewareIP so RemoteAddr holds the client IP.
func middlewareRateLimit(cfg RateLimit) Middleware {
	if cfg.RPS <= 0 {
		return nil
	}

	l := newIPLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := l.get(clientKey(r), time.Now())

			res := lim.Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
				writeJSON(w, errorResponse{Message: "Too many requests"}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}
