package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/taskleaf/taskleaf/config"
	"github.com/taskleaf/taskleaf/db"
	"github.com/taskleaf/taskleaf/log"
	"github.com/taskleaf/taskleaf/models"
)

// GetTodos handles GET /api/todos
//
// Unrecognized sortBy/sortOrder/filter values fall back silently to
// defaults rather than erroring.
func GetTodos(c *gin.Context) {
	cfg := config.Get()

	query := models.Query{
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "pageSize", cfg.PageSize),
		SortBy:    models.NormalizeSortBy(c.Query("sortBy")),
		SortOrder: models.NormalizeSortOrder(c.Query("sortOrder")),
		Filter:    models.NormalizeFilter(c.Query("filter")),
		Q:         c.Query("q"),
	}

	page, err := db.QueryTodoPage(query)
	if err != nil {
		log.Error().Err(err).Msg("failed to load todos")
		RespondError(c, http.StatusInternalServerError, "Failed to load todos")
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateTodo handles POST /api/todos
func CreateTodo(c *gin.Context) {
	var body struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := strings.TrimSpace(body.Title)
	if title == "" {
		RespondError(c, http.StatusBadRequest, "Title is required")
		return
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		RespondError(c, http.StatusBadRequest,
			fmt.Sprintf("Title must be at most %d characters", models.MaxTitleLength))
		return
	}

	todo, err := db.CreateTodo(title)
	if err != nil {
		log.Error().Err(err).Msg("failed to create todo")
		RespondError(c, http.StatusInternalServerError, "Failed to create todo")
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// ToggleTodo handles PATCH /api/todos/:id
func ToggleTodo(c *gin.Context) {
	id := c.Param("id")

	var body struct {
		Completed *bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Completed == nil {
		RespondError(c, http.StatusBadRequest, "completed must be boolean")
		return
	}

	todo, err := db.SetTodoCompleted(id, *body.Completed)
	if errors.Is(err, db.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "Todo not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update todo")
		RespondError(c, http.StatusInternalServerError, "Failed to update todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

// DeleteTodo handles DELETE /api/todos/:id
func DeleteTodo(c *gin.Context) {
	id := c.Param("id")

	err := db.DeleteTodo(id)
	if errors.Is(err, db.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "Todo not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete todo")
		RespondError(c, http.StatusInternalServerError, "Failed to delete todo")
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearCompleted handles DELETE /api/todos
//
// Removes every completed todo in the current search scope (?q=), not
// just the ones on the loaded page.
func ClearCompleted(c *gin.Context) {
	deleted, err := db.ClearCompleted(c.Query("q"))
	if err != nil {
		log.Error().Err(err).Msg("failed to clear completed todos")
		RespondError(c, http.StatusInternalServerError, "Failed to clear completed todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// intQuery parses an integer query parameter, falling back to def for
// missing, malformed, or non-positive values.
func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
