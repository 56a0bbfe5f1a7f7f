package models

import (
	"net/url"
	"strconv"
)

// ViewState is the user-controlled view of the todo list: page, status
// filter, sort and search text. It round-trips through URL query
// parameters so a reload or shared link reproduces the same view.
type ViewState struct {
	Page      int
	Filter    Filter
	SortBy    SortBy
	SortOrder SortOrder
	Q         string
}

// DefaultViewState returns the state used when the URL carries no parameters.
func DefaultViewState() ViewState {
	return ViewState{
		Page:      1,
		Filter:    FilterAll,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

// ParseViewState restores a ViewState from URL query parameters.
// Missing or invalid values fall back to defaults.
func ParseViewState(values url.Values) ViewState {
	v := DefaultViewState()
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p >= 1 {
		v.Page = p
	}
	v.Filter = NormalizeFilter(values.Get("filter"))
	v.SortBy = NormalizeSortBy(values.Get("sortBy"))
	v.SortOrder = NormalizeSortOrder(values.Get("sortOrder"))
	v.Q = values.Get("q")
	return v
}

// Values serializes the ViewState back into URL query parameters.
func (v ViewState) Values() url.Values {
	return url.Values{
		"page":      {strconv.Itoa(v.Page)},
		"filter":    {string(v.Filter)},
		"sortBy":    {string(v.SortBy)},
		"sortOrder": {string(v.SortOrder)},
		"q":         {v.Q},
	}
}

// Query converts the ViewState into a page query with the given page size.
func (v ViewState) Query(pageSize int) Query {
	return Query{
		Page:      v.Page,
		PageSize:  pageSize,
		SortBy:    v.SortBy,
		SortOrder: v.SortOrder,
		Filter:    v.Filter,
		Q:         v.Q,
	}.Normalize()
}
