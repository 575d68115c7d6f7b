package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shashiranjanraj/myshop/pkg/auth"
	"github.com/shashiranjanraj/myshop/pkg/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func anonRequest(ip string) *http.Request {
	r := httptest.NewRequest("GET", "/api/products", nil)
	r.RemoteAddr = ip + ":54321"
	return r
}

func userRequest(t *testing.T, userID uint) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(userID, "user")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	r := anonRequest("10.0.0.1")
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// The Nth request within the window passes, the N+1th gets 429 with a
// Retry-After hint no longer than the window.
func TestScopedBudgetExhaustion(t *testing.T) {
	const max = 3
	h := middleware.Scoped("test-exhaustion", max)(okHandler())

	for i := 0; i < max; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, anonRequest("192.0.2.10"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, anonRequest("192.0.2.10"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("request %d: got %d, want 429", max+1, rec.Code)
	}

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After header: %v", err)
	}
	if retryAfter < 1 || retryAfter > 60 {
		t.Errorf("Retry-After = %d, want within (0, 60]", retryAfter)
	}
}

func TestScopedKeysCallersSeparately(t *testing.T) {
	h := middleware.Scoped("test-isolation", 1)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, anonRequest("192.0.2.20"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first caller: got %d", rec.Code)
	}

	// Same IP is now over budget…
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, anonRequest("192.0.2.20"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first caller second request: got %d, want 429", rec.Code)
	}

	// …but a different IP is not.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, anonRequest("192.0.2.21"))
	if rec.Code != http.StatusOK {
		t.Errorf("second caller: got %d, want 200", rec.Code)
	}
}

// Authenticated callers get the user budget, anonymous ones the anon budget.
func TestScopedSplitBudgets(t *testing.T) {
	const userMax, anonMax = 5, 2
	h := middleware.Auth(middleware.ScopedSplit("test-split-user", userMax, anonMax)(okHandler()))

	for i := 0; i < userMax; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, userRequest(t, 42))
		if rec.Code != http.StatusOK {
			t.Fatalf("user request %d: got %d", i+1, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, userRequest(t, 42))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("user over budget: got %d, want 429", rec.Code)
	}

	anon := middleware.ScopedSplit("test-split-anon", userMax, anonMax)(okHandler())
	for i := 0; i < anonMax; i++ {
		rec := httptest.NewRecorder()
		anon.ServeHTTP(rec, anonRequest("192.0.2.30"))
		if rec.Code != http.StatusOK {
			t.Fatalf("anon request %d: got %d", i+1, rec.Code)
		}
	}
	rec = httptest.NewRecorder()
	anon.ServeHTTP(rec, anonRequest("192.0.2.30"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("anon over budget: got %d, want 429", rec.Code)
	}
}

func TestThrottleWindowResets(t *testing.T) {
	th := middleware.NewThrottle(20 * time.Millisecond)

	if ok, _ := th.Allow("k", 1); !ok {
		t.Fatal("first request should pass")
	}
	if ok, _ := th.Allow("k", 1); ok {
		t.Fatal("second request should be rejected")
	}

	time.Sleep(25 * time.Millisecond)

	if ok, _ := th.Allow("k", 1); !ok {
		t.Error("request after window reset should pass")
	}
}

func TestGlobalLimitPerIP(t *testing.T) {
	h := middleware.GlobalLimit(0.001, 2)(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, anonRequest("192.0.2.40"))
		if rec.Code != http.StatusOK {
			t.Fatalf("burst request %d: got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, anonRequest("192.0.2.40"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("over burst: got %d, want 429", rec.Code)
	}

	// Other IPs keep their own bucket.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, anonRequest("192.0.2.41"))
	if rec.Code != http.StatusOK {
		t.Errorf("fresh ip: got %d, want 200", rec.Code)
	}
}

func TestForwardedForFirstHop(t *testing.T) {
	h := middleware.Scoped("test-fwd", 1)(okHandler())

	fwdReq := func(fwd string) *http.Request {
		r := anonRequest("10.0.0.99")
		r.Header.Set("X-Forwarded-For", fwd)
		return r
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, fwdReq("203.0.113.7, 10.0.0.1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	// Same first hop, different proxy chain — same caller.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, fwdReq("203.0.113.7, 10.9.9.9"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429 for same first hop", rec.Code)
	}
}
