package repositories_test

import (
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/myshop/app/repositories"
)

func TestFilterFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/products?price_min=5&price_max=99.5&search=mouse&ordering=-price", nil)
	f := repositories.ProductFilterFromRequest(r)

	if f.PriceMin == nil || *f.PriceMin != 5 {
		t.Errorf("price_min = %v", f.PriceMin)
	}
	if f.PriceMax == nil || *f.PriceMax != 99.5 {
		t.Errorf("price_max = %v", f.PriceMax)
	}
	if f.Search != "mouse" {
		t.Errorf("search = %q", f.Search)
	}
	if f.OrderClause() != "price DESC" {
		t.Errorf("order = %q", f.OrderClause())
	}
}

func TestFilterIgnoresGarbageBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/products?price_min=abc&price_max=", nil)
	f := repositories.ProductFilterFromRequest(r)

	if f.PriceMin != nil || f.PriceMax != nil {
		t.Errorf("expected nil bounds, got min=%v max=%v", f.PriceMin, f.PriceMax)
	}
}

// Unknown ordering tokens must not reach SQL; they fall back to the default.
func TestOrderClauseWhitelist(t *testing.T) {
	cases := map[string]string{
		"price":              "price ASC",
		"-price":             "price DESC",
		"stock":              "stock ASC",
		"-stock":             "stock DESC",
		"created_at":         "created_at ASC",
		"-created_at":        "created_at DESC",
		"":                   "created_at DESC",
		"name":               "created_at DESC",
		"price; DROP TABLE":  "created_at DESC",
		"-price,-created_at": "created_at DESC",
	}

	for token, want := range cases {
		f := repositories.ProductFilter{Ordering: token}
		if got := f.OrderClause(); got != want {
			t.Errorf("ordering %q: got %q, want %q", token, got, want)
		}
	}
}

func TestNormalizedIsCanonical(t *testing.T) {
	lo, hi := 5.0, 50.0

	a := repositories.ProductFilter{PriceMin: &lo, PriceMax: &hi, Search: "Mouse", Ordering: "price"}
	b := repositories.ProductFilter{PriceMin: &lo, PriceMax: &hi, Search: "mouse", Ordering: "price"}
	if a.Normalized() != b.Normalized() {
		t.Error("case-insensitive search terms should normalize identically")
	}

	c := repositories.ProductFilter{PriceMin: &lo, PriceMax: &hi, Search: "mouse", Ordering: "-price"}
	if a.Normalized() == c.Normalized() {
		t.Error("different orderings must normalize differently")
	}

	d := repositories.ProductFilter{Ordering: "totally-bogus"}
	e := repositories.ProductFilter{}
	if d.Normalized() != e.Normalized() {
		t.Error("bogus ordering should normalize like the default")
	}
}
