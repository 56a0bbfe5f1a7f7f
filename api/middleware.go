package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskleaf/taskleaf/config"
)

// AuthMiddleware returns a Gin middleware that enforces the demo login
// gate when it is enabled. With auth mode "none" every request passes.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Get().IsDemoAuth() {
			c.Next()
			return
		}

		if validateSession(c) == nil {
			AbortError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Next()
	}
}

// CORSMiddleware creates a CORS middleware for development, where the
// frontend dev server runs on a different origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
			"http://localhost:5173": true,
		}

		if allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
