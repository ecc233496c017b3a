package handlers

import (
	"errors"

	"civicapp/internal/middleware"
	"civicapp/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

var (
	// ErrUnauthenticated indicates no current user could be determined
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrInvalidUserID indicates the stored user identifier is malformed
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrForbidden indicates the user lacks permissions for the operation
	ErrForbidden = errors.New("forbidden")
)

// GetCurrentUserID returns the current authenticated user's ID.
// It first checks the Gin context (set by RequireAuth/RequireAnyRole),
// then falls back to the session store. Returns an error if unauthenticated
// or if the stored value is invalid.
func GetCurrentUserID(c *gin.Context) (int, error) {
	if rawID, exists := c.Get(middleware.UserIDKey); exists {
		if id, ok := rawID.(int); ok {
			return id, nil
		}
		return 0, ErrInvalidUserID
	}

	// Fallback to session lookup if context not populated
	session := sessions.Default(c)
	userID := session.Get(middleware.UserIDKey)
	if userID == nil {
		return 0, ErrUnauthenticated
	}
	id, ok := userID.(int)
	if !ok {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// GetCurrentUserRole returns the current authenticated user's role.
func GetCurrentUserRole(c *gin.Context) (models.Role, error) {
	if rawRole, exists := c.Get(middleware.UserRoleKey); exists {
		if role, ok := rawRole.(models.Role); ok {
			return role, nil
		}
		return "", ErrUnauthenticated
	}

	session := sessions.Default(c)
	roleVal := session.Get(middleware.UserRoleKey)
	roleStr, ok := roleVal.(string)
	if !ok {
		return "", ErrUnauthenticated
	}
	role := models.Role(roleStr)
	if !role.IsValid() {
		return "", ErrUnauthenticated
	}
	return role, nil
}

// CurrentIdentity returns both the user ID and role of the current session.
func CurrentIdentity(c *gin.Context) (int, models.Role, error) {
	userID, err := GetCurrentUserID(c)
	if err != nil {
		return 0, "", err
	}
	role, err := GetCurrentUserRole(c)
	if err != nil {
		return 0, "", err
	}
	return userID, role, nil
}

// RequireSelfOrAdmin permits the action if the current user is the target user
// or holds the admin role. Returns ErrForbidden when neither condition is met.
func RequireSelfOrAdmin(currentID int, currentRole models.Role, targetID int) error {
	if currentID == 0 {
		return ErrUnauthenticated
	}
	if currentID == targetID {
		return nil
	}
	if currentRole != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
