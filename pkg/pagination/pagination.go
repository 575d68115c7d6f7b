// Package pagination provides page/per-page query handling and the
// paginated result envelope used by list endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest extracts pagination parameters from an HTTP request.
// Invalid or missing values fall back to defaults; per_page is capped at
// MaxPerPage so a single request can never ask for an unbounded page.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("page_size"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 {
			if v > MaxPerPage {
				v = MaxPerPage
			}
			p.PerPage = v
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Result wraps a page of items with its metadata. A page number past the end
// of the collection yields an empty Data slice, not an error.
type Result struct {
	Data       interface{} `json:"data"`
	TotalCount int64       `json:"total_count"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

// NewResult assembles a Result from a page of data and the total row count.
func NewResult(data interface{}, totalCount int64, params Params) Result {
	totalPages := int(totalCount) / params.PerPage
	if int(totalCount)%params.PerPage > 0 {
		totalPages++
	}

	return Result{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1 && totalCount > 0,
	}
}
