package models

// MaxTitleLength is the longest title accepted on create.
const MaxTitleLength = 120

// Todo represents a single task
type Todo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// Page is the envelope returned for one page of todos.
// TotalActive and TotalCompleted are computed over the whole search-scoped
// set, never over Items, so they stay stable while the user pages around
// or switches the status filter.
type Page struct {
	Items          []Todo    `json:"items"`
	Page           int       `json:"page"`
	PageSize       int       `json:"pageSize"`
	TotalItems     int       `json:"totalItems"`
	TotalPages     int       `json:"totalPages"`
	TotalActive    int       `json:"totalActive"`
	TotalCompleted int       `json:"totalCompleted"`
	SortBy         SortBy    `json:"sortBy"`
	SortOrder      SortOrder `json:"sortOrder"`
	Filter         Filter    `json:"filter"`
	Q              string    `json:"q"`
}
