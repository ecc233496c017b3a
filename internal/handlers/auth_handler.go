package handlers

import (
	"net/http"

	"civicapp/internal/config"
	"civicapp/internal/middleware"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	userService  serviceinterfaces.UserServiceInterface
	emailService serviceinterfaces.EmailService
	config       *config.Config
	logger       *observability.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(userService serviceinterfaces.UserServiceInterface, emailService serviceinterfaces.EmailService, cfg *config.Config, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		emailService: emailService,
		config:       cfg,
		logger:       logger,
	}
}

// Login handles user login requests
func (h *AuthHandler) Login(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "login")
	defer observability.FinishSpan(span, nil)

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("auth.email", req.Email),
		attribute.Bool("auth.password_provided", req.Password != ""),
	)

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "Authentication failed", map[string]interface{}{"email": req.Email, "error": err.Error()})
		HandleAppError(c, contextutils.ErrInvalidCredentials)
		return
	}

	span.SetAttributes(
		observability.AttributeUserID(user.ID),
		observability.AttributeRole(user.Role),
	)

	// Create session carrying both identity and role
	session := sessions.Default(c)
	session.Set(middleware.UserIDKey, user.ID)
	session.Set(middleware.UserRoleKey, string(user.Role))

	if err := session.Save(); err != nil {
		h.logger.Error(c.Request.Context(), "Failed to save session", err, nil)
		HandleAppError(c, contextutils.WrapError(err, "failed to create session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    user,
	})
}

// Logout handles user logout requests
func (h *AuthHandler) Logout(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "logout")
	defer observability.FinishSpan(span, nil)

	session := sessions.Default(c)
	if userID := session.Get(middleware.UserIDKey); userID != nil {
		if id, ok := userID.(int); ok {
			span.SetAttributes(observability.AttributeUserID(id))
		}
	}

	session.Clear()

	if err := session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to clear session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Signup handles self-service citizen registration
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "signup")
	defer observability.FinishSpan(span, nil)

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	// Self-registration always produces a citizen; privileged roles are
	// granted by an admin afterwards.
	req.Role = models.RoleCitizen

	user, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		h.logger.Error(ctx, "Signup failed", err, map[string]interface{}{"email": req.Email})
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeUserID(user.ID))

	// Welcome email is best effort
	if h.emailService != nil && h.emailService.IsEnabled() {
		if err := h.emailService.SendWelcomeEmail(ctx, user); err != nil {
			h.logger.Warn(ctx, "Failed to send welcome email", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		}
	}

	session := sessions.Default(c)
	session.Set(middleware.UserIDKey, user.ID)
	session.Set(middleware.UserRoleKey, string(user.Role))
	if err := session.Save(); err != nil {
		h.logger.Error(ctx, "Failed to save session after signup", err, nil)
		HandleAppError(c, contextutils.WrapError(err, "failed to create session"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created",
		"user":    user,
	})
}

// Status returns the current session's user, or authenticated=false if no session
func (h *AuthHandler) Status(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "auth_status")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		// Session references a user that no longer exists; treat as logged out
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	span.SetAttributes(observability.AttributeUserID(user.ID))

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          user,
	})
}
