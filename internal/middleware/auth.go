// Package middleware provides authentication and authorization middleware for the Gin web framework.
package middleware

import (
	"net/http"

	"civicapp/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for storing user information
const (
	// UserIDKey is the key used to store user ID in session
	UserIDKey = "user_id"
	// UserRoleKey is the key used to store the user's role in session
	UserRoleKey = "user_role"
)

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Authentication required",
		"code":  "UNAUTHORIZED",
	})
	c.Abort()
}

// sessionIdentity extracts and validates the user ID and role from the session.
func sessionIdentity(c *gin.Context) (int, models.Role, bool) {
	session := sessions.Default(c)

	userID := session.Get(UserIDKey)
	if userID == nil {
		return 0, "", false
	}

	userIDInt, ok := userID.(int)
	if !ok {
		// JSON numbers are often stored as float64
		userIDFloat, ok := userID.(float64)
		if !ok {
			return 0, "", false
		}
		userIDInt = int(userIDFloat)
	}

	roleVal := session.Get(UserRoleKey)
	roleStr, ok := roleVal.(string)
	if !ok || roleStr == "" {
		return 0, "", false
	}

	role := models.Role(roleStr)
	if !role.IsValid() {
		return 0, "", false
	}

	return userIDInt, role, true
}

// RequireAuth returns a middleware that requires authentication
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := sessionIdentity(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		// Store user info in context for handlers to use
		c.Set(UserIDKey, userID)
		c.Set(UserRoleKey, role)

		c.Next()
	}
}

// RequireAnyRole returns a middleware that requires one of the given roles
func RequireAnyRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := sessionIdentity(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		allowed := false
		for _, r := range roles {
			if role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient role",
				"code":  "FORBIDDEN",
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserRoleKey, role)

		c.Next()
	}
}

// RequireRole returns a middleware that requires a specific role
func RequireRole(role models.Role) gin.HandlerFunc {
	return RequireAnyRole(role)
}

// RequireAdmin returns a middleware that requires the admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAdmin)
}
