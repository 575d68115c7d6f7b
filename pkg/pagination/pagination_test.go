package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/myshop/pkg/pagination"
)

func params(t *testing.T, url string) pagination.Params {
	t.Helper()
	return pagination.FromRequest(httptest.NewRequest("GET", url, nil))
}

func TestDefaults(t *testing.T) {
	p := params(t, "/api/products")
	if p.Page != 1 || p.PerPage != pagination.DefaultPerPage || p.Offset != 0 {
		t.Errorf("got %+v", p)
	}
}

func TestExplicitPage(t *testing.T) {
	p := params(t, "/api/products?page=3&page_size=10")
	if p.Page != 3 || p.PerPage != 10 {
		t.Errorf("got %+v", p)
	}
	if p.Offset != 20 {
		t.Errorf("offset = %d, want 20", p.Offset)
	}
}

func TestPerPageNeverExceedsMax(t *testing.T) {
	p := params(t, "/api/products?page_size=5000")
	if p.PerPage != pagination.MaxPerPage {
		t.Errorf("per_page = %d, want cap %d", p.PerPage, pagination.MaxPerPage)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	for _, url := range []string{
		"/api/products?page=0",
		"/api/products?page=-2",
		"/api/products?page=abc",
		"/api/products?page_size=0",
		"/api/products?page_size=-5",
	} {
		p := params(t, url)
		if p.Page < 1 || p.PerPage < 1 {
			t.Errorf("%s: got %+v", url, p)
		}
	}
}

func TestNewResultMetadata(t *testing.T) {
	p := pagination.Params{Page: 2, PerPage: 10}
	r := pagination.NewResult([]int{1, 2, 3}, 25, p)

	if r.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", r.TotalPages)
	}
	if !r.HasNext || !r.HasPrev {
		t.Errorf("has_next=%v has_prev=%v, want true/true", r.HasNext, r.HasPrev)
	}
}

// A page past the end of the collection is valid: empty data, no error.
func TestNewResultPastEnd(t *testing.T) {
	p := pagination.Params{Page: 99, PerPage: 10}
	r := pagination.NewResult([]int{}, 25, p)

	if r.HasNext {
		t.Error("page past the end must not report has_next")
	}
	if r.TotalCount != 25 {
		t.Errorf("total_count = %d, want 25", r.TotalCount)
	}
}
