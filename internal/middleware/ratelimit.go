package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per client key.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter allows perInterval requests per interval for each key,
// with bursts up to burst.
func NewKeyedRateLimiter(perInterval int, interval time.Duration, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(float64(perInterval) / interval.Seconds()),
		burst:    burst,
	}
}

// Allow reports whether a request for key may proceed now. When it may not,
// it also returns how long until the next token is available.
func (k *KeyedRateLimiter) Allow(key string, now time.Time) (bool, time.Duration) {
	k.mu.Lock()
	v, ok := k.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = v
	}
	v.lastSeen = now
	k.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Prune forgets keys idle since before cutoff and returns how many it removed.
func (k *KeyedRateLimiter) Prune(cutoff time.Time) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for key, v := range k.limiters {
		if v.lastSeen.Before(cutoff) {
			delete(k.limiters, key)
			n++
		}
	}
	return n
}

// NewRateLimitHandler rejects requests over the per-client limit with 429.
// Clients are keyed by remote IP; wire it after chi's RealIP middleware so
// proxied requests are keyed by the original client.
func NewRateLimitHandler(limiter *KeyedRateLimiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			ok, wait := limiter.Allow(key, time.Now())
			if !ok {
				log.WarnContext(r.Context(), "rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeError writes the API's standard error body.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}
