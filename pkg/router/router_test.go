package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/myshop/pkg/router"
)

func noop(w http.ResponseWriter, r *http.Request) {}

func TestNamedRouteLookup(t *testing.T) {
	r := router.New()
	r.Get("/api/products/{id}", "products.show", noop)

	path, ok := r.Path("products.show")
	if !ok || path != "/api/products/{id}" {
		t.Errorf("path = %q ok=%v", path, ok)
	}

	url, err := r.URL("products.show", map[string]string{"id": "7"})
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "/api/products/7" {
		t.Errorf("url = %q", url)
	}

	if _, err := r.URL("products.show", nil); err == nil {
		t.Error("expected error for missing params")
	}
	if _, err := r.URL("nope", nil); err == nil {
		t.Error("expected error for unknown route")
	}
}

func TestGroupPrefixAndMiddleware(t *testing.T) {
	r := router.New()

	var order []string
	mw := func(tag string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", mw("group"))
	api.Get("/ping", "ping", func(w http.ResponseWriter, req *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}, mw("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	want := []string{"group", "route", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestMethodsAreDistinct(t *testing.T) {
	r := router.New()
	r.Get("/thing", "thing.get", noop)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/thing", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", rec.Code)
	}
}
