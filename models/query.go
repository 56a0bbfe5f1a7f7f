package models

import "strings"

// Filter selects todos by completion status.
type Filter string

// SortBy selects the primary sort key.
type SortBy string

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"

	SortByCreatedAt SortBy = "createdAt"
	SortByTitle     SortBy = "title"
	SortByStatus    SortBy = "status"

	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultPageSize is used when a request does not specify one.
const DefaultPageSize = 5

// Query holds the normalized parameters for one page fetch.
type Query struct {
	Page      int
	PageSize  int
	SortBy    SortBy
	SortOrder SortOrder
	Filter    Filter
	Q         string
}

// NormalizeFilter returns f if valid, FilterAll otherwise.
// Unrecognized values fall back silently rather than erroring.
func NormalizeFilter(f string) Filter {
	switch Filter(f) {
	case FilterActive, FilterCompleted:
		return Filter(f)
	default:
		return FilterAll
	}
}

// NormalizeSortBy returns s if valid, SortByCreatedAt otherwise.
func NormalizeSortBy(s string) SortBy {
	switch SortBy(s) {
	case SortByTitle, SortByStatus:
		return SortBy(s)
	default:
		return SortByCreatedAt
	}
}

// NormalizeSortOrder returns s if valid, SortDesc otherwise.
func NormalizeSortOrder(s string) SortOrder {
	if SortOrder(s) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// Normalize clamps pagination and replaces invalid enum values with defaults.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.Filter = NormalizeFilter(string(q.Filter))
	q.SortBy = NormalizeSortBy(string(q.SortBy))
	q.SortOrder = NormalizeSortOrder(string(q.SortOrder))
	q.Q = strings.TrimSpace(q.Q)
	return q
}
