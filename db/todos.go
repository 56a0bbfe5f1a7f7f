package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taskleaf/taskleaf/models"
)

// CreateTodo inserts a new todo with a fresh id. The title is stored as
// given; validation happens at the API boundary.
func CreateTodo(title string) (*models.Todo, error) {
	todo := &models.Todo{
		ID:        uuid.New().String(),
		Title:     title,
		Completed: false,
		CreatedAt: NowMs(),
	}

	_, err := GetDB().Exec(`
		INSERT INTO todos (id, title, completed, created_at)
		VALUES (?, ?, 0, ?)
	`, todo.ID, todo.Title, todo.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	return todo, nil
}

// GetTodo returns a todo by id, or ErrNotFound
func GetTodo(id string) (*models.Todo, error) {
	row := GetDB().QueryRow(`
		SELECT id, title, completed, created_at FROM todos WHERE id = ?
	`, id)

	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return &todo, nil
}

// SetTodoCompleted sets the completed flag and returns the updated todo.
// Setting an already-set flag is a no-op that still returns the row.
func SetTodoCompleted(id string, completed bool) (*models.Todo, error) {
	result, err := GetDB().Exec(`
		UPDATE todos SET completed = ? WHERE id = ?
	`, boolToInt(completed), id)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return GetTodo(id)
}

// DeleteTodo permanently removes a todo, or returns ErrNotFound
func DeleteTodo(id string) error {
	result, err := GetDB().Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCompleted removes every completed todo within the given search scope
// and returns how many rows were deleted. An empty q clears all completed.
func ClearCompleted(q string) (int64, error) {
	where := "completed = 1"
	var args []any
	if pred, arg, ok := searchPredicate(q); ok {
		where += " AND " + pred
		args = append(args, arg)
	}

	result, err := GetDB().Exec("DELETE FROM todos WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return result.RowsAffected()
}

// QueryTodoPage fetches one page of todos plus aggregate counts.
//
// TotalItems counts rows matching filter+search. TotalActive and
// TotalCompleted count rows matching only the search predicate, so the
// numbers stay stable when the user switches the status filter tab.
// All four reads run inside a single transaction so the counts and the
// returned items reflect the same snapshot of the table.
func QueryTodoPage(query models.Query) (*models.Page, error) {
	query = query.Normalize()

	searchPred, searchArg, hasSearch := searchPredicate(query.Q)

	pageWhere := "1=1"
	var pageArgs []any
	if hasSearch {
		pageWhere = searchPred
		pageArgs = append(pageArgs, searchArg)
	}
	switch query.Filter {
	case models.FilterActive:
		pageWhere += " AND completed = 0"
	case models.FilterCompleted:
		pageWhere += " AND completed = 1"
	}

	page := &models.Page{
		Items:     []models.Todo{},
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Filter:    query.Filter,
		Q:         query.Q,
	}

	err := Transaction(func(tx *sql.Tx) error {
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM todos WHERE "+pageWhere, pageArgs...,
		).Scan(&page.TotalItems); err != nil {
			return err
		}

		countWhere := "1=1"
		var countArgs []any
		if hasSearch {
			countWhere = searchPred
			countArgs = append(countArgs, searchArg)
		}
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM todos WHERE completed = 0 AND "+countWhere, countArgs...,
		).Scan(&page.TotalActive); err != nil {
			return err
		}
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM todos WHERE completed = 1 AND "+countWhere, countArgs...,
		).Scan(&page.TotalCompleted); err != nil {
			return err
		}

		offset := (query.Page - 1) * query.PageSize
		rows, err := tx.Query(
			"SELECT id, title, completed, created_at FROM todos WHERE "+pageWhere+
				" ORDER BY "+orderClause(query.SortBy, query.SortOrder)+
				" LIMIT ? OFFSET ?",
			append(append([]any{}, pageArgs...), query.PageSize, offset)...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			todo, err := scanTodo(rows)
			if err != nil {
				return err
			}
			page.Items = append(page.Items, todo)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}

	page.TotalPages = (page.TotalItems + query.PageSize - 1) / query.PageSize
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}

	return page, nil
}

// searchPredicate returns a case-insensitive substring match on title.
// Whitespace-only q imposes no restriction.
func searchPredicate(q string) (pred string, arg any, ok bool) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", nil, false
	}
	return "LOWER(title) LIKE ?", "%" + strings.ToLower(q) + "%", true
}

// orderClause maps the whitelisted sort key and order to SQL. Status sorts
// get a created_at DESC tie-break so rows sharing a completion status keep
// a stable, deterministic order.
func orderClause(sortBy models.SortBy, sortOrder models.SortOrder) string {
	dir := "DESC"
	if sortOrder == models.SortAsc {
		dir = "ASC"
	}

	switch sortBy {
	case models.SortByTitle:
		return "title COLLATE NOCASE " + dir
	case models.SortByStatus:
		return "completed " + dir + ", created_at DESC"
	default:
		return "created_at " + dir
	}
}

func scanTodo(row interface{ Scan(...any) error }) (models.Todo, error) {
	var t models.Todo
	var completed int
	err := row.Scan(&t.ID, &t.Title, &completed, &t.CreatedAt)
	t.Completed = completed == 1
	return t, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
