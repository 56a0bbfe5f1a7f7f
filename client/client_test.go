package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskleaf/taskleaf/models"
)

func TestQueryPageEncodesParameters(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		json.NewEncoder(w).Encode(models.Page{Items: []models.Todo{}, Page: 2})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.QueryPage(context.Background(), models.Query{
		Page: 2, PageSize: 10,
		SortBy: models.SortByTitle, SortOrder: models.SortAsc,
		Filter: models.FilterActive, Q: "milk",
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 2 {
		t.Errorf("page = %d, want 2", page.Page)
	}

	want := map[string]string{
		"page": "2", "pageSize": "10",
		"sortBy": "title", "sortOrder": "asc",
		"filter": "active", "q": "milk",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Errorf("query param %s = %q, want %q", key, gotQuery[key], value)
		}
	}
}

func TestCreateMapsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Title is required"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Create(context.Background(), "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %T (%v), want *ValidationError", err, err)
	}
	if verr.Message != "Title is required" {
		t.Errorf("message = %q", verr.Message)
	}
}

func TestToggleMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Todo not found"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Toggle(context.Background(), "gone", true)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %T (%v), want *NotFoundError", err, err)
	}
}

func TestServerErrorMapsQueryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "Failed to load todos"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).QueryPage(context.Background(), models.Query{})
	var qf *QueryFailedError
	if !errors.As(err, &qf) {
		t.Fatalf("got %T (%v), want *QueryFailedError", err, err)
	}
}

func TestTransportErrorMapsQueryFailed(t *testing.T) {
	// Point at a closed server to force a connection error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := New(srv.URL).Remove(context.Background(), "any")
	var qf *QueryFailedError
	if !errors.As(err, &qf) {
		t.Fatalf("got %T (%v), want *QueryFailedError", err, err)
	}
	if qf.Unwrap() == nil {
		t.Error("transport error should wrap the underlying error")
	}
}

func TestRemoveAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL).Remove(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}
}

func TestClearCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "milk" {
			t.Errorf("q = %q, want milk", got)
		}
		json.NewEncoder(w).Encode(map[string]int{"deleted": 3})
	}))
	defer srv.Close()

	n, err := New(srv.URL).ClearCompleted(context.Background(), "milk")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
}
