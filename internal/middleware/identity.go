package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDContextKey = "userID"

// Identity resolves the caller's user identifier from the X-User-Id header
// or the userId query parameter and stores it in the request context.
// Authentication happens upstream; this service only needs the identifier.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			userID = c.Query("userId")
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// UserID returns the identifier stored by Identity.
func UserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}
