package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"civicapp/internal/config"
	"civicapp/internal/middleware"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	"civicapp/internal/version"
)

// NewRouter creates a new router with all the necessary middleware and routes
func NewRouter(
	cfg *config.Config,
	userService serviceinterfaces.UserServiceInterface,
	issueService serviceinterfaces.IssueServiceInterface,
	feedbackService serviceinterfaces.FeedbackServiceInterface,
	commentService serviceinterfaces.CommentServiceInterface,
	updateService serviceinterfaces.UpdateServiceInterface,
	emailService serviceinterfaces.EmailService,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware(nil))

	// HTTP request logging via the observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		if statusCode >= 500 {
			fields["http.error_type"] = "server_error"
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		} else if statusCode >= 400 {
			fields["http.error_type"] = "client_error"
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		} else {
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "civic-backend"})
	})

	// OpenTelemetry middleware for HTTP tracing with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling("civic-backend"))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Session middleware
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     "/",
		MaxAge:   config.SessionMaxAge,
		HttpOnly: true,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
		sessionOpts.Secure = true
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	// Security headers
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	// Initialize handlers
	authHandler := NewAuthHandler(userService, emailService, cfg, logger)
	issueHandler := NewIssueHandler(issueService, cfg, logger)
	feedbackHandler := NewFeedbackHandler(feedbackService, cfg, logger)
	commentHandler := NewCommentHandler(commentService, cfg, logger)
	updateHandler := NewUpdateHandler(updateService, cfg, logger)
	userAdminHandler := NewUserAdminHandler(userService, cfg, logger)

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "civic-backend",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/signup", authHandler.Signup)
			auth.GET("/status", authHandler.Status)
		}

		issues := v1.Group("/issues")
		{
			issues.GET("", issueHandler.ListIssues)
			issues.GET("/stats", issueHandler.GetIssueStats)
			issues.GET("/categories", issueHandler.CountIssuesByCategory)
			issues.GET("/mine", middleware.RequireAuth(), issueHandler.ListMyIssues)
			issues.GET("/assigned", middleware.RequireRole(models.RolePolitician), issueHandler.ListAssignedIssues)
			issues.GET("/:id", issueHandler.GetIssue)
			issues.POST("", middleware.RequireRole(models.RoleCitizen), issueHandler.CreateIssue)
			issues.POST("/:id/assign", middleware.RequireAnyRole(models.RoleAdmin, models.RoleModerator), issueHandler.AssignIssue)
			issues.POST("/:id/respond", middleware.RequireRole(models.RolePolitician), issueHandler.RespondToIssue)
			issues.POST("/:id/resolve", middleware.RequireRole(models.RolePolitician), issueHandler.ResolveIssue)
			issues.PUT("/:id/status", middleware.RequireAnyRole(models.RoleAdmin, models.RoleModerator), issueHandler.UpdateIssueStatus)
			issues.DELETE("/:id", middleware.RequireAdmin(), issueHandler.DeleteIssue)

			// Issue discussion threads
			issues.GET("/:id/comments", commentHandler.ListComments)
			issues.POST("/:id/comments", middleware.RequireAuth(), commentHandler.AddComment)
		}

		comments := v1.Group("/comments")
		{
			comments.GET("/flagged", middleware.RequireAnyRole(models.RoleModerator, models.RoleAdmin), commentHandler.ListFlaggedComments)
			comments.POST("/:id/flag", middleware.RequireAnyRole(models.RoleModerator, models.RoleAdmin), commentHandler.FlagComment)
			comments.POST("/:id/unflag", middleware.RequireAnyRole(models.RoleModerator, models.RoleAdmin), commentHandler.UnflagComment)
			comments.DELETE("/:id", middleware.RequireAuth(), commentHandler.DeleteComment)
		}

		feedback := v1.Group("/feedback")
		{
			feedback.POST("", middleware.RequireRole(models.RoleCitizen), feedbackHandler.SubmitFeedback)
			feedback.GET("/mine", middleware.RequireRole(models.RoleCitizen), feedbackHandler.ListMyFeedback)
			feedback.DELETE("/:id", middleware.RequireAdmin(), feedbackHandler.DeleteFeedback)
		}

		politicians := v1.Group("/politicians")
		{
			politicians.GET("", userAdminHandler.ListPoliticians)
			politicians.GET("/:id/feedback", feedbackHandler.ListFeedbackForPolitician)
			politicians.GET("/:id/rating", feedbackHandler.GetAverageRating)
			politicians.GET("/:id/stats", feedbackHandler.GetPoliticianStats)
			politicians.GET("/:id/updates", updateHandler.ListUpdatesByPolitician)
		}

		updates := v1.Group("/updates")
		{
			updates.GET("", updateHandler.ListPublishedUpdates)
			updates.GET("/mine", middleware.RequireRole(models.RolePolitician), updateHandler.ListMyUpdates)
			updates.GET("/:id", updateHandler.ViewUpdate)
			updates.POST("", middleware.RequireRole(models.RolePolitician), updateHandler.CreateUpdate)
			updates.PUT("/:id", middleware.RequireRole(models.RolePolitician), updateHandler.EditUpdate)
			updates.DELETE("/:id", middleware.RequireAuth(), updateHandler.DeleteUpdate)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", userAdminHandler.GetAllUsers)
			admin.POST("/users", userAdminHandler.CreateUser)
			admin.GET("/users/:id", userAdminHandler.GetUser)
			admin.PUT("/users/:id/role", userAdminHandler.UpdateUserRole)
			admin.PUT("/users/:id/enabled", userAdminHandler.SetUserEnabled)
			admin.DELETE("/users/:id", userAdminHandler.DeleteUser)
		}
	}

	// Automatic route listing at root path
	routeListing := NewRouteListingHandler("Civic Backend")
	routeListing.CollectRoutes(router)

	router.GET("/", func(c *gin.Context) {
		if c.Query("json") == "true" {
			routeListing.GetRouteListingJSON(c)
		} else {
			routeListing.GetRouteListingPage(c)
		}
	})

	return router
}
