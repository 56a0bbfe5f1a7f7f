// Package client is the typed HTTP boundary to the todo REST API. It maps
// the wire protocol onto Go types and the error taxonomy; it adds no retry
// logic of its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taskleaf/taskleaf/models"
)

// Client talks to the todo REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL (e.g. "http://localhost:4000")
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// QueryPage fetches one page of todos with aggregate counts
func (c *Client) QueryPage(ctx context.Context, query models.Query) (*models.Page, error) {
	query = query.Normalize()

	values := url.Values{
		"page":      {strconv.Itoa(query.Page)},
		"pageSize":  {strconv.Itoa(query.PageSize)},
		"sortBy":    {string(query.SortBy)},
		"sortOrder": {string(query.SortOrder)},
		"filter":    {string(query.Filter)},
	}
	if query.Q != "" {
		values.Set("q", query.Q)
	}

	var page models.Page
	if err := c.do(ctx, http.MethodGet, "/api/todos?"+values.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Create persists a new todo with the given title
func (c *Client) Create(ctx context.Context, title string) (*models.Todo, error) {
	var todo models.Todo
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/todos", body, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Toggle sets the completed flag of a todo and returns the updated row
func (c *Client) Toggle(ctx context.Context, id string, completed bool) (*models.Todo, error) {
	var todo models.Todo
	body := map[string]bool{"completed": completed}
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+url.PathEscape(id), body, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Remove permanently deletes a todo
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}

// ClearCompleted deletes every completed todo in the given search scope
// and reports how many were removed
func (c *Client) ClearCompleted(ctx context.Context, q string) (int, error) {
	path := "/api/todos"
	if q = strings.TrimSpace(q); q != "" {
		path += "?q=" + url.QueryEscape(q)
	}

	var body struct {
		Deleted int `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, path, nil, &body); err != nil {
		return 0, err
	}
	return body.Deleted, nil
}

// do performs one request and decodes the response into out (if non-nil).
// Error responses are mapped onto the typed error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &QueryFailedError{Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &QueryFailedError{Message: "decode response", Err: err}
	}
	return nil
}

// errorFromResponse maps an error status onto the typed taxonomy, using
// the server's `{"message": ...}` body when present.
func errorFromResponse(resp *http.Response) error {
	message := resp.Status

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		message = body.Message
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &ValidationError{Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Message: message}
	default:
		return &QueryFailedError{Message: message}
	}
}
