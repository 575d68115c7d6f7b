package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/myshop/pkg/auth"
	"github.com/shashiranjanraj/myshop/pkg/middleware"
)

func identityEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserIDFromCtx(r.Context()); ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func bearerRequest(t *testing.T, userID uint, role string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	h := middleware.Auth(identityEcho(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", rec.Code)
	}
}

func TestAuthInjectsIdentity(t *testing.T) {
	h := middleware.Auth(identityEcho(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, bearerRequest(t, 42, "user"))
	if rec.Code != http.StatusOK {
		t.Errorf("got %d, want identity in context", rec.Code)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	h := middleware.OptionalAuth(identityEcho(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("anon: got %d, want pass-through without identity", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, bearerRequest(t, 7, "user"))
	if rec.Code != http.StatusOK {
		t.Errorf("token: got %d, want identity in context", rec.Code)
	}
}

func TestHasRole(t *testing.T) {
	h := middleware.Auth(middleware.HasRole("admin")(identityEcho(t)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, bearerRequest(t, 1, "user"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("user role: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, bearerRequest(t, 2, "admin"))
	if rec.Code != http.StatusOK {
		t.Errorf("admin role: got %d, want 200", rec.Code)
	}
}

func TestGuestBlocksAuthenticated(t *testing.T) {
	h := middleware.Guest(identityEcho(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, bearerRequest(t, 1, "user"))
	if rec.Code != http.StatusConflict {
		t.Errorf("authenticated: got %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("anon: got %d, want pass-through", rec.Code)
	}
}
