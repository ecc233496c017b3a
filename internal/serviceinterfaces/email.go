package serviceinterfaces

import (
	"context"

	"civicapp/internal/models"
)

// EmailService defines the interface for email notifications
type EmailService interface {
	// SendIssueAssignmentNotification notifies a politician that an issue was assigned to them
	SendIssueAssignmentNotification(ctx context.Context, politician *models.User, issue *models.Issue) error

	// SendIssueResponseNotification notifies the reporting citizen of an official response
	SendIssueResponseNotification(ctx context.Context, citizen *models.User, issue *models.Issue) error

	// SendIssueResolvedNotification notifies the reporting citizen that their issue was resolved
	SendIssueResolvedNotification(ctx context.Context, citizen *models.User, issue *models.Issue) error

	// SendWelcomeEmail sends a welcome email to a newly registered user
	SendWelcomeEmail(ctx context.Context, user *models.User) error

	// SendEmail sends a generic email with the given parameters
	SendEmail(ctx context.Context, to, subject, body string) error

	// IsEnabled returns whether email functionality is enabled
	IsEnabled() bool
}
