package models

import (
	"net/url"
	"testing"
)

func TestViewStateRoundTrip(t *testing.T) {
	filters := []Filter{FilterAll, FilterActive, FilterCompleted}
	sorts := []SortBy{SortByCreatedAt, SortByTitle, SortByStatus}
	orders := []SortOrder{SortAsc, SortDesc}

	for _, f := range filters {
		for _, s := range sorts {
			for _, o := range orders {
				v := ViewState{Page: 3, Filter: f, SortBy: s, SortOrder: o, Q: "buy milk"}
				got := ParseViewState(v.Values())
				if got != v {
					t.Errorf("round trip mismatch: sent %+v, got %+v", v, got)
				}
			}
		}
	}
}

func TestParseViewStateDefaults(t *testing.T) {
	got := ParseViewState(url.Values{})
	want := DefaultViewState()
	if got != want {
		t.Errorf("empty values: got %+v, want %+v", got, want)
	}
}

func TestParseViewStateInvalidValuesFallBack(t *testing.T) {
	values := url.Values{
		"page":      {"zero"},
		"filter":    {"done"},
		"sortBy":    {"priority"},
		"sortOrder": {"sideways"},
	}
	got := ParseViewState(values)
	want := DefaultViewState()
	if got != want {
		t.Errorf("invalid values: got %+v, want %+v", got, want)
	}

	if got := ParseViewState(url.Values{"page": {"-2"}}); got.Page != 1 {
		t.Errorf("negative page: got %d, want 1", got.Page)
	}
}

func TestQueryNormalize(t *testing.T) {
	q := Query{Page: 0, PageSize: -5, Filter: "bogus", SortBy: "bogus", SortOrder: "bogus", Q: "  milk  "}.Normalize()

	if q.Page != 1 || q.PageSize != DefaultPageSize {
		t.Errorf("pagination not clamped: %+v", q)
	}
	if q.Filter != FilterAll || q.SortBy != SortByCreatedAt || q.SortOrder != SortDesc {
		t.Errorf("enums not defaulted: %+v", q)
	}
	if q.Q != "milk" {
		t.Errorf("search text not trimmed: %q", q.Q)
	}
}
