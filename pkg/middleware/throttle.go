// Package middleware provides the HTTP middleware stack for myshop.
package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shashiranjanraj/myshop/pkg/response"
)

// ── Fixed-window throttle ─────────────────────────────────────────────────────

// bucket tracks a fixed-window request count for one caller key.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// allow increments the counter and reports whether the caller is still within
// its budget. retryAfter is how long until the window resets, rounded up to a
// whole second for the Retry-After header.
func (b *bucket) allow(max int, window time.Duration) (allowed bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	if b.count <= max {
		return true, 0
	}
	return false, int(math.Ceil(b.resetAt.Sub(now).Seconds()))
}

// Throttle is a scoped fixed-window rate limiter. Each (scope, caller) pair
// gets its own window. Expired buckets are evicted by a background janitor.
type Throttle struct {
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket

	janitorOnce sync.Once
}

// NewThrottle creates a Throttle whose windows span the given duration.
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{
		window:  window,
		buckets: map[string]*bucket{},
	}
}

// Allow records one request for key and reports whether it is within budget.
func (t *Throttle) Allow(key string, max int) (bool, int) {
	t.startJanitor()

	t.mu.Lock()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{resetAt: time.Now().Add(t.window)}
		t.buckets[key] = b
	}
	t.mu.Unlock()

	return b.allow(max, t.window)
}

func (t *Throttle) startJanitor() {
	t.janitorOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				now := time.Now()
				t.mu.Lock()
				for key, b := range t.buckets {
					b.mu.Lock()
					expired := now.After(b.resetAt)
					b.mu.Unlock()
					if expired {
						delete(t.buckets, key)
					}
				}
				t.mu.Unlock()
			}
		}()
	})
}

// defaultThrottle backs every scoped limiter; scopes are encoded in the key
// so one janitor covers them all.
var defaultThrottle = NewThrottle(time.Minute)

// Scoped returns middleware limiting each caller to max requests per minute
// within the named scope. Authenticated callers are keyed by user ID,
// anonymous callers by client IP. Exceeding the budget yields 429 with a
// Retry-After hint.
//
//	api.Post("/products", "products.create",
//	    h, middleware.Auth, middleware.Scoped("burst", config.ThrottleBurstPerMinute()))
func Scoped(scope string, max int) func(http.Handler) http.Handler {
	return ScopedSplit(scope, max, max)
}

// ScopedSplit is Scoped with separate budgets for authenticated and
// anonymous callers (Django-style user vs anon rates).
func ScopedSplit(scope string, userMax, anonMax int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, authenticated := callerKey(r)
			max := anonMax
			if authenticated {
				max = userMax
			}

			allowed, retryAfter := defaultThrottle.Allow(scope+":"+key, max)
			if !allowed {
				response.Throttled(w, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) (key string, authenticated bool) {
	if id, ok := UserIDFromCtx(r.Context()); ok {
		return "user:" + strconv.FormatUint(uint64(id), 10), true
	}
	return "ip:" + clientIP(r), false
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// first hop is the original client
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ── Global token bucket ───────────────────────────────────────────────────────

// limiterStore hands out one token-bucket limiter per client IP.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(s.limit, s.burst)
		s.limiters[ip] = lim
	}
	return lim
}

// GlobalLimit sits in front of the whole API as crude abuse protection:
// each IP gets a token bucket refilled at perSecond with the given burst.
// Scoped throttles underneath enforce the per-action budgets.
func GlobalLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	store := &limiterStore{
		limiters: map[string]*rate.Limiter{},
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.get(clientIP(r)).Allow() {
				response.Throttled(w, 1)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
