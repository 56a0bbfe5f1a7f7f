package api

import "github.com/gin-gonic/gin"

// RespondError sends an error response in the `{"message": ...}` shape
// used by every endpoint.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// AbortError aborts the handler chain with an error response
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
