package services

import (
	"context"
	"database/sql"
	"testing"

	"civicapp/internal/config"
	"civicapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailTestConfig(enabled bool, host string) *config.Config {
	return &config.Config{
		Email: config.EmailConfig{
			Enabled: enabled,
			SMTP: config.SMTPConfig{
				Host:        host,
				Port:        587,
				FromAddress: "noreply@example.com",
				FromName:    "Civic Platform",
			},
		},
	}
}

func TestEmailService_IsEnabled(t *testing.T) {
	assert.True(t, NewEmailService(emailTestConfig(true, "smtp.example.com"), newTestLogger()).IsEnabled())
	assert.False(t, NewEmailService(emailTestConfig(false, "smtp.example.com"), newTestLogger()).IsEnabled())
	assert.False(t, NewEmailService(emailTestConfig(true, ""), newTestLogger()).IsEnabled())
}

func TestEmailService_DisabledSkipsSend(t *testing.T) {
	svc := NewEmailService(emailTestConfig(false, ""), newTestLogger())

	err := svc.SendEmail(context.Background(), "casey@example.com", "subject", "<p>body</p>")
	require.NoError(t, err)
}

func TestEmailService_EmptyRecipient(t *testing.T) {
	svc := NewEmailService(emailTestConfig(true, "smtp.example.com"), newTestLogger())

	err := svc.SendEmail(context.Background(), "", "subject", "<p>body</p>")
	require.Error(t, err)
}

func TestEmailService_NotificationsRenderWhenDisabled(t *testing.T) {
	// Disabled service short-circuits after rendering, so these exercise the templates
	svc := NewEmailService(emailTestConfig(false, ""), newTestLogger())

	politician := &models.User{ID: 2, FullName: "Pat Politician", Email: "pat@example.com"}
	citizen := &models.User{ID: 1, FullName: "Casey Citizen", Email: "casey@example.com"}
	issue := &models.Issue{
		ID:          7,
		Title:       "Broken streetlight on Main St",
		Description: "The light has been out for two weeks now",
		Category:    "INFRASTRUCTURE",
		Response:    sql.NullString{String: "We are on it", Valid: true},
	}

	require.NoError(t, svc.SendIssueAssignmentNotification(context.Background(), politician, issue))
	require.NoError(t, svc.SendIssueResponseNotification(context.Background(), citizen, issue))
	require.NoError(t, svc.SendIssueResolvedNotification(context.Background(), citizen, issue))
	require.NoError(t, svc.SendWelcomeEmail(context.Background(), citizen))
}
