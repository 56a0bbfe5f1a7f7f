package db

import (
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/taskleaf/taskleaf/models"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "taskleaf-db-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("TASKLEAF_DATA_DIR", dir)

	code := m.Run()

	Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func resetTodos(t *testing.T) {
	t.Helper()
	if _, err := GetDB().Exec("DELETE FROM todos"); err != nil {
		t.Fatalf("failed to reset todos: %v", err)
	}
}

// insertTodo seeds a todo with a controlled created_at so sort order
// is deterministic in tests.
func insertTodo(t *testing.T, title string, completed bool, createdAt int64) models.Todo {
	t.Helper()
	todo := models.Todo{
		ID:        uuid.New().String(),
		Title:     title,
		Completed: completed,
		CreatedAt: createdAt,
	}
	_, err := GetDB().Exec(
		"INSERT INTO todos (id, title, completed, created_at) VALUES (?, ?, ?, ?)",
		todo.ID, todo.Title, boolToInt(completed), createdAt,
	)
	if err != nil {
		t.Fatalf("failed to insert todo %q: %v", title, err)
	}
	return todo
}

func seedSevenTodos(t *testing.T) {
	t.Helper()
	resetTodos(t)
	// 4 active, 3 completed
	insertTodo(t, "write report", false, 1000)
	insertTodo(t, "buy milk", false, 2000)
	insertTodo(t, "walk dog", false, 3000)
	insertTodo(t, "water plants", false, 4000)
	insertTodo(t, "pay rent", true, 5000)
	insertTodo(t, "book flight", true, 6000)
	insertTodo(t, "call dentist", true, 7000)
}

func TestQueryTodoPagePagination(t *testing.T) {
	seedSevenTodos(t)

	page1, err := QueryTodoPage(models.Query{Page: 1, PageSize: 5, Filter: models.FilterAll})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1.Items) != 5 {
		t.Errorf("page 1: got %d items, want 5", len(page1.Items))
	}
	if page1.TotalItems != 7 || page1.TotalPages != 2 {
		t.Errorf("page 1: totalItems=%d totalPages=%d, want 7/2", page1.TotalItems, page1.TotalPages)
	}
	if page1.TotalActive != 4 || page1.TotalCompleted != 3 {
		t.Errorf("page 1: totalActive=%d totalCompleted=%d, want 4/3", page1.TotalActive, page1.TotalCompleted)
	}

	page2, err := QueryTodoPage(models.Query{Page: 2, PageSize: 5, Filter: models.FilterAll})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Errorf("page 2: got %d items, want 2", len(page2.Items))
	}
	if page2.TotalActive != 4 || page2.TotalCompleted != 3 {
		t.Errorf("page 2: aggregate counts changed: %d/%d", page2.TotalActive, page2.TotalCompleted)
	}
}

func TestQueryTodoPageCountsIgnoreStatusFilter(t *testing.T) {
	seedSevenTodos(t)

	for _, filter := range []models.Filter{models.FilterAll, models.FilterActive, models.FilterCompleted} {
		page, err := QueryTodoPage(models.Query{Page: 1, PageSize: 10, Filter: filter})
		if err != nil {
			t.Fatalf("filter %s: %v", filter, err)
		}
		// Aggregate counts reflect the whole search-scoped set no matter
		// which status tab is selected.
		if page.TotalActive != 4 || page.TotalCompleted != 3 {
			t.Errorf("filter %s: totalActive=%d totalCompleted=%d, want 4/3",
				filter, page.TotalActive, page.TotalCompleted)
		}
	}

	active, err := QueryTodoPage(models.Query{Page: 1, PageSize: 10, Filter: models.FilterActive})
	if err != nil {
		t.Fatal(err)
	}
	if active.TotalItems != 4 || len(active.Items) != 4 {
		t.Errorf("active filter: totalItems=%d items=%d, want 4/4", active.TotalItems, len(active.Items))
	}
	for _, item := range active.Items {
		if item.Completed {
			t.Errorf("active filter returned completed todo %q", item.Title)
		}
	}
}

func TestQueryTodoPageSearchScopesCounts(t *testing.T) {
	resetTodos(t)
	insertTodo(t, "Buy Milk", false, 1000)
	insertTodo(t, "Walk dog", true, 2000)

	page, err := QueryTodoPage(models.Query{Page: 1, PageSize: 5, Filter: models.FilterAll, Q: "milk"})
	if err != nil {
		t.Fatal(err)
	}

	if len(page.Items) != 1 || page.Items[0].Title != "Buy Milk" {
		t.Fatalf("search: got %+v, want only Buy Milk", page.Items)
	}
	if page.TotalItems != 1 {
		t.Errorf("search: totalItems=%d, want 1", page.TotalItems)
	}
	// Counts reflect the 1 matching task, not all 2
	if page.TotalActive != 1 || page.TotalCompleted != 0 {
		t.Errorf("search: totalActive=%d totalCompleted=%d, want 1/0", page.TotalActive, page.TotalCompleted)
	}
}

func TestQueryTodoPageWhitespaceSearchIsNoRestriction(t *testing.T) {
	seedSevenTodos(t)

	page, err := QueryTodoPage(models.Query{Page: 1, PageSize: 10, Filter: models.FilterAll, Q: "   "})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 7 {
		t.Errorf("whitespace search: totalItems=%d, want 7", page.TotalItems)
	}
}

func TestQueryTodoPageStatusSortTieBreak(t *testing.T) {
	resetTodos(t)
	oldDone := insertTodo(t, "old done", true, 1000)
	newDone := insertTodo(t, "new done", true, 2000)
	active := insertTodo(t, "still open", false, 1500)

	page, err := QueryTodoPage(models.Query{
		Page: 1, PageSize: 10,
		Filter: models.FilterAll,
		SortBy: models.SortByStatus, SortOrder: models.SortAsc,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{active.ID, newDone.ID, oldDone.ID}
	if len(page.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(page.Items))
	}
	for i, id := range want {
		if page.Items[i].ID != id {
			t.Errorf("position %d: got id %q, want %q", i, page.Items[i].ID, id)
		}
	}
}

func TestQueryTodoPageTitleSort(t *testing.T) {
	resetTodos(t)
	insertTodo(t, "banana", false, 1000)
	insertTodo(t, "Apple", false, 2000)
	insertTodo(t, "cherry", false, 3000)

	page, err := QueryTodoPage(models.Query{
		Page: 1, PageSize: 10,
		Filter: models.FilterAll,
		SortBy: models.SortByTitle, SortOrder: models.SortAsc,
	})
	if err != nil {
		t.Fatal(err)
	}

	titles := []string{"Apple", "banana", "cherry"}
	for i, want := range titles {
		if page.Items[i].Title != want {
			t.Errorf("position %d: got %q, want %q", i, page.Items[i].Title, want)
		}
	}
}

func TestQueryTodoPageClampsPagination(t *testing.T) {
	seedSevenTodos(t)

	page, err := QueryTodoPage(models.Query{Page: -3, PageSize: 0, Filter: models.FilterAll})
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 1 || page.PageSize != models.DefaultPageSize {
		t.Errorf("clamp: page=%d pageSize=%d", page.Page, page.PageSize)
	}

	empty, err := QueryTodoPage(models.Query{Page: 99, PageSize: 5, Filter: models.FilterAll})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Items) != 0 {
		t.Errorf("past-the-end page: got %d items, want 0", len(empty.Items))
	}
	if empty.TotalPages != 2 {
		t.Errorf("past-the-end page: totalPages=%d, want 2", empty.TotalPages)
	}
}

func TestQueryTodoPageEmptyTable(t *testing.T) {
	resetTodos(t)

	page, err := QueryTodoPage(models.Query{Page: 1, PageSize: 5, Filter: models.FilterAll})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 0 || page.TotalPages != 1 {
		t.Errorf("empty table: totalItems=%d totalPages=%d, want 0/1", page.TotalItems, page.TotalPages)
	}
	if page.Items == nil {
		t.Error("empty table: items should be an empty slice, not nil")
	}
}

func TestSetTodoCompletedIdempotent(t *testing.T) {
	resetTodos(t)
	todo := insertTodo(t, "repeat me", true, 1000)

	updated, err := SetTodoCompleted(todo.ID, true)
	if err != nil {
		t.Fatalf("idempotent toggle: %v", err)
	}
	if !updated.Completed {
		t.Error("idempotent toggle: completed flag lost")
	}
}

func TestSetTodoCompletedNotFound(t *testing.T) {
	resetTodos(t)
	if _, err := SetTodoCompleted("missing-id", true); err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteTodo(t *testing.T) {
	resetTodos(t)
	todo := insertTodo(t, "doomed", false, 1000)

	if err := DeleteTodo(todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteTodo(todo.ID); err != ErrNotFound {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestCreateTodo(t *testing.T) {
	resetTodos(t)

	todo, err := CreateTodo("Buy milk")
	if err != nil {
		t.Fatal(err)
	}
	if todo.ID == "" || todo.Completed || todo.CreatedAt == 0 {
		t.Errorf("created todo malformed: %+v", todo)
	}

	got, err := GetTodo(todo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Buy milk" {
		t.Errorf("persisted title %q, want %q", got.Title, "Buy milk")
	}
}

func TestClearCompleted(t *testing.T) {
	seedSevenTodos(t)

	n, err := ClearCompleted("")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("cleared %d, want 3", n)
	}

	page, err := QueryTodoPage(models.Query{Page: 1, PageSize: 10, Filter: models.FilterAll})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 4 || page.TotalCompleted != 0 {
		t.Errorf("after clear: totalItems=%d totalCompleted=%d, want 4/0", page.TotalItems, page.TotalCompleted)
	}
}

func TestClearCompletedRespectsSearchScope(t *testing.T) {
	resetTodos(t)
	insertTodo(t, "pay rent", true, 1000)
	insertTodo(t, "book flight", true, 2000)

	n, err := ClearCompleted("rent")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cleared %d, want 1", n)
	}

	if _, err := QueryTodoPage(models.Query{Page: 1, PageSize: 10, Filter: models.FilterAll}); err != nil {
		t.Fatal(err)
	}
}
