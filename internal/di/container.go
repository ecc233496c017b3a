// Package di provides a dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"civicapp/internal/config"
	"civicapp/internal/database"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	"civicapp/internal/services"
	contextutils "civicapp/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetUserService() (serviceinterfaces.UserServiceInterface, error)
	GetIssueService() (serviceinterfaces.IssueServiceInterface, error)
	GetFeedbackService() (serviceinterfaces.FeedbackServiceInterface, error)
	GetCommentService() (serviceinterfaces.CommentServiceInterface, error)
	GetUpdateService() (serviceinterfaces.UpdateServiceInterface, error)
	GetEmailService() (serviceinterfaces.EmailService, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	EnsureAdminUser(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	sc.initializeServices(ctx)

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetUserService returns the user service
func (sc *ServiceContainer) GetUserService() (serviceinterfaces.UserServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.UserServiceInterface](sc, "user")
}

// GetIssueService returns the issue service
func (sc *ServiceContainer) GetIssueService() (serviceinterfaces.IssueServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.IssueServiceInterface](sc, "issue")
}

// GetFeedbackService returns the feedback service
func (sc *ServiceContainer) GetFeedbackService() (serviceinterfaces.FeedbackServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.FeedbackServiceInterface](sc, "feedback")
}

// GetCommentService returns the comment service
func (sc *ServiceContainer) GetCommentService() (serviceinterfaces.CommentServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.CommentServiceInterface](sc, "comment")
}

// GetUpdateService returns the update service
func (sc *ServiceContainer) GetUpdateService() (serviceinterfaces.UpdateServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.UpdateServiceInterface](sc, "update")
}

// GetEmailService returns the email service
func (sc *ServiceContainer) GetEmailService() (serviceinterfaces.EmailService, error) {
	return GetServiceAs[serviceinterfaces.EmailService](sc, "email")
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var errs []error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err, nil)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errs)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	// Services with no cross-service dependencies
	userService := services.NewUserService(sc.db, sc.logger)
	sc.services["user"] = userService

	emailService := services.NewEmailService(sc.cfg, sc.logger)
	sc.services["email"] = emailService

	// Issue service sends assignment and resolution notifications
	issueService := services.NewIssueService(sc.db, sc.logger, userService, emailService)
	sc.services["issue"] = issueService

	// Feedback service validates politician targets via the user service
	feedbackService := services.NewFeedbackService(sc.db, sc.logger, userService)
	sc.services["feedback"] = feedbackService

	commentService := services.NewCommentService(sc.db, sc.logger)
	sc.services["comment"] = commentService

	updateService := services.NewUpdateService(sc.db, sc.logger)
	sc.services["update"] = updateService
}

// EnsureAdminUser creates the admin user if it doesn't exist
func (sc *ServiceContainer) EnsureAdminUser(ctx context.Context) error {
	userService, err := sc.GetUserService()
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to get user service")
	}

	return userService.EnsureAdminUserExists(ctx, sc.cfg.Server.AdminEmail, sc.cfg.Server.AdminPassword)
}
