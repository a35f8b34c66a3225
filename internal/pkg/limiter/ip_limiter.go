/*
Package limiter rate-limits requests per client IP using token buckets
(golang.org/x/time/rate). Idle buckets are reaped periodically so the map does
not grow with every IP ever seen.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"paperboard/internal/pkg/errs"
	"paperboard/internal/pkg/logx"
	"paperboard/internal/pkg/resp"
)

const cleanupInterval = 3 * time.Minute

// IPRateLimiter maps client IPs to their token buckets.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int
}

// NewIPRateLimiter returns a limiter allowing r events per second with burst b
// per IP, with a background reaper for idle buckets.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go l.reapIdle()

	return l
}

// GetLimiter returns the bucket for ip, creating it on first sight.
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	bucket, ok := l.limits[ip]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		bucket, ok = l.limits[ip]
		if !ok {
			bucket = rate.NewLimiter(l.r, l.b)
			l.limits[ip] = bucket
		}
		l.mu.Unlock()
	}

	return bucket
}

// reapIdle removes buckets that have refilled completely; the next request from
// that IP recreates an equivalent one.
func (l *IPRateLimiter) reapIdle() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		removed := 0
		for ip, bucket := range l.limits {
			if bucket.TokensAt(time.Now()) >= float64(bucket.Burst()) {
				delete(l.limits, ip)
				removed++
			}
		}
		remaining := len(l.limits)
		l.mu.Unlock()

		logx.Info("rate limiter cleanup", "removed", removed, "remaining", remaining)
	}
}

// Middleware answers 429 when the caller's bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.GetLimiter(ClientIP(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the bare host from the request's remote address.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}
