package handlers

import (
	"net/http"

	"civicapp/internal/config"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// UserAdminHandler handles user management endpoints.
type UserAdminHandler struct {
	userService serviceinterfaces.UserServiceInterface
	config      *config.Config
	logger      *observability.Logger
}

// NewUserAdminHandler creates a UserAdminHandler.
func NewUserAdminHandler(userService serviceinterfaces.UserServiceInterface, cfg *config.Config, logger *observability.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		userService: userService,
		config:      cfg,
		logger:      logger,
	}
}

// SetUserEnabledRequest is the payload for enabling or disabling an account
type SetUserEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetAllUsers handles GET /v1/admin/users.
func (h *UserAdminHandler) GetAllUsers(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_all_users")
	defer observability.FinishSpan(span, nil)

	if role := c.Query("role"); role != "" {
		if !models.Role(role).IsValid() {
			HandleValidationError(c, "role", role, "unknown role")
			return
		}
		users, err := h.userService.GetUsersByRole(ctx, models.Role(role))
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
		return
	}

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to list users", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser handles POST /v1/admin/users.
func (h *UserAdminHandler) CreateUser(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "admin_create_user")
	defer observability.FinishSpan(span, nil)

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	if req.Role != "" && !req.Role.IsValid() {
		HandleValidationError(c, "role", req.Role, "unknown role")
		return
	}

	user, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		h.logger.Error(ctx, "Failed to create user", err, map[string]interface{}{"email": req.Email})
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeUserID(user.ID))

	c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /v1/admin/users/:id.
func (h *UserAdminHandler) GetUser(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "admin_get_user")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeUserID(id))

	user, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUserRole handles PUT /v1/admin/users/:id/role.
func (h *UserAdminHandler) UpdateUserRole(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "update_user_role")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	if !req.Role.IsValid() {
		HandleValidationError(c, "role", req.Role, "unknown role")
		return
	}

	span.SetAttributes(
		observability.AttributeUserID(id),
		observability.AttributeRole(req.Role),
	)

	if err := h.userService.UpdateUserRole(ctx, id, req.Role); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role updated"})
}

// SetUserEnabled handles PUT /v1/admin/users/:id/enabled.
func (h *UserAdminHandler) SetUserEnabled(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "set_user_enabled")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetUserEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeUserID(id))

	if err := h.userService.SetUserEnabled(ctx, id, *req.Enabled); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated"})
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "admin_delete_user")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// An admin removing their own account would strand the session
	currentID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}
	if currentID == id {
		HandleAppError(c, contextutils.NewBadRequestError("cannot delete your own account"))
		return
	}

	span.SetAttributes(observability.AttributeUserID(id))

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

// ListPoliticians handles GET /v1/politicians, optionally filtered by constituency.
func (h *UserAdminHandler) ListPoliticians(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_politicians")
	defer observability.FinishSpan(span, nil)

	if constituency := c.Query("constituency"); constituency != "" {
		politicians, err := h.userService.GetPoliticiansByConstituency(ctx, constituency)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"politicians": politicians})
		return
	}

	politicians, err := h.userService.GetUsersByRole(ctx, models.RolePolitician)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"politicians": politicians})
}
