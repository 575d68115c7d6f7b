package repositories

import (
	"net/http"
	"strconv"
	"strings"
)

// orderings maps the client-supplied ordering token to a SQL ORDER BY clause.
// Anything not listed falls back to defaultOrdering.
var orderings = map[string]string{
	"price":       "price ASC",
	"-price":      "price DESC",
	"stock":       "stock ASC",
	"-stock":      "stock DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

const defaultOrdering = "created_at DESC"

// ProductFilter holds the query constraints a listing request may carry.
// Price bounds are inclusive on both ends.
type ProductFilter struct {
	PriceMin *float64
	PriceMax *float64
	Search   string
	Ordering string
}

// ProductFilterFromRequest parses filter constraints from query parameters:
// price_min, price_max, search, ordering.
func ProductFilterFromRequest(r *http.Request) ProductFilter {
	q := r.URL.Query()
	var f ProductFilter

	if v, err := strconv.ParseFloat(q.Get("price_min"), 64); err == nil {
		f.PriceMin = &v
	}
	if v, err := strconv.ParseFloat(q.Get("price_max"), 64); err == nil {
		f.PriceMax = &v
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	f.Ordering = strings.TrimSpace(q.Get("ordering"))

	return f
}

// OrderClause resolves the ordering token to a whitelisted ORDER BY clause.
func (f ProductFilter) OrderClause() string {
	if clause, ok := orderings[f.Ordering]; ok {
		return clause
	}
	return defaultOrdering
}

// Normalized renders the filter as a canonical string, used to build cache
// keys so two requests with the same shape share one cache entry.
func (f ProductFilter) Normalized() string {
	var b strings.Builder

	if f.PriceMin != nil {
		b.WriteString("min=")
		b.WriteString(strconv.FormatFloat(*f.PriceMin, 'f', -1, 64))
	}
	if f.PriceMax != nil {
		b.WriteString("|max=")
		b.WriteString(strconv.FormatFloat(*f.PriceMax, 'f', -1, 64))
	}
	if f.Search != "" {
		b.WriteString("|q=")
		b.WriteString(strings.ToLower(f.Search))
	}
	b.WriteString("|ord=")
	b.WriteString(f.OrderClause())

	return b.String()
}
