package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Demo auth
	api.POST("/auth/login", Login)
	api.POST("/auth/logout", Logout)

	// Todos
	todos := api.Group("/todos")
	todos.Use(AuthMiddleware())
	todos.GET("", GetTodos)
	todos.POST("", CreateTodo)
	todos.DELETE("", ClearCompleted)
	todos.PATCH("/:id", ToggleTodo)
	todos.DELETE("/:id", DeleteTodo)
}
