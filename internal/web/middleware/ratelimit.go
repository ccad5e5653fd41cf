package middleware

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/kozaktomas/face-filter/internal/logging"
)

// FrameLimiter throttles frame uploads per session. Each mounted session gets its own
// token bucket refilled at the configured rate with a burst of one second's worth.
type FrameLimiter struct {
	bucket  map[string]*rate.Limiter
	rate    rate.Limit
	burst   int
	mounted func(key string) bool
	mu      sync.Mutex
}

// NewFrameLimiter creates a limiter admitting perSecond uploads per session.
// A non-positive rate disables limiting. Requests for keys mounted rejects pass through
// without a bucket; a nil mounted tracks every key.
func NewFrameLimiter(perSecond int, mounted func(key string) bool) *FrameLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &FrameLimiter{
		bucket:  make(map[string]*rate.Limiter),
		rate:    limit,
		burst:   max(perSecond, 1),
		mounted: mounted,
	}
}

func (l *FrameLimiter) isMounted(key string) bool {
	return l.mounted == nil || l.mounted(key)
}

func (l *FrameLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exist := l.bucket[key]; !exist {
		l.bucket[key] = rate.NewLimiter(l.rate, l.burst)
	}
	return l.bucket[key]
}

// Forget drops the bucket of an unmounted session.
func (l *FrameLimiter) Forget(key string) {
	l.mu.Lock()
	delete(l.bucket, key)
	l.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (l *FrameLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bucket)
}

// Middleware rejects uploads over the rate with 429. The key is the {id} URL parameter.
func (l *FrameLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "id")
		if !l.isMounted(key) {
			next.ServeHTTP(w, r)
			return
		}
		limiter := l.limiterFor(key)
		if !l.isMounted(key) {
			// unmounted while the bucket was being created
			l.Forget(key)
		}
		if !limiter.Allow() {
			logging.Debug(logging.Fields{"session": key}, "too many frames")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "too many frames"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
