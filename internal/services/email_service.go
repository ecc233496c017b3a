// Package services provides business logic services for the civic issue platform.
package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"civicapp/internal/config"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/mail.v2"
)

// EmailService implements serviceinterfaces.EmailService using gomail
type EmailService struct {
	cfg    *config.Config
	logger *observability.Logger
	dialer *mail.Dialer
}

// Ensure EmailService implements the EmailService interface
var _ serviceinterfaces.EmailService = (*EmailService)(nil)

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config, logger *observability.Logger) *EmailService {
	var dialer *mail.Dialer
	if cfg.Email.Enabled && cfg.Email.SMTP.Host != "" {
		dialer = mail.NewDialer(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password,
		)
	}

	return &EmailService{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
	}
}

var issueAssignmentTemplate = template.Must(template.New("issue_assignment").Parse(`
<h2>New Issue Assigned</h2>
<p>Hello {{.Name}},</p>
<p>The issue <strong>{{.Title}}</strong> ({{.Category}}) has been assigned to you.</p>
<p>{{.Description}}</p>
<p>Please review it and respond to the reporting citizen.</p>
`))

var issueResponseTemplate = template.Must(template.New("issue_response").Parse(`
<h2>Official Response to Your Issue</h2>
<p>Hello {{.Name}},</p>
<p>Your issue <strong>{{.Title}}</strong> has received an official response:</p>
<blockquote>{{.Response}}</blockquote>
`))

var issueResolvedTemplate = template.Must(template.New("issue_resolved").Parse(`
<h2>Your Issue Has Been Resolved</h2>
<p>Hello {{.Name}},</p>
<p>Your issue <strong>{{.Title}}</strong> has been marked as resolved.</p>
{{if .Notes}}<p>Resolution notes: {{.Notes}}</p>{{end}}
`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<h2>Welcome</h2>
<p>Hello {{.Name}},</p>
<p>Your account has been created. You can now report civic issues and follow their progress.</p>
`))

// SendIssueAssignmentNotification notifies a politician that an issue was assigned to them
func (e *EmailService) SendIssueAssignmentNotification(ctx context.Context, politician *models.User, issue *models.Issue) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_issue_assignment",
		observability.AttributeUserID(politician.ID),
		observability.AttributeIssueID(issue.ID),
	)
	defer observability.FinishSpan(span, &err)

	body, err := renderTemplate(issueAssignmentTemplate, map[string]interface{}{
		"Name":        politician.FullName,
		"Title":       issue.Title,
		"Category":    issue.Category,
		"Description": issue.Description,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Issue assigned: %s", issue.Title)
	return e.SendEmail(ctx, politician.Email, subject, body)
}

// SendIssueResponseNotification notifies the reporting citizen of an official response
func (e *EmailService) SendIssueResponseNotification(ctx context.Context, citizen *models.User, issue *models.Issue) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_issue_response",
		observability.AttributeUserID(citizen.ID),
		observability.AttributeIssueID(issue.ID),
	)
	defer observability.FinishSpan(span, &err)

	body, err := renderTemplate(issueResponseTemplate, map[string]interface{}{
		"Name":     citizen.FullName,
		"Title":    issue.Title,
		"Response": issue.Response.String,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Response to your issue: %s", issue.Title)
	return e.SendEmail(ctx, citizen.Email, subject, body)
}

// SendIssueResolvedNotification notifies the reporting citizen that their issue was resolved
func (e *EmailService) SendIssueResolvedNotification(ctx context.Context, citizen *models.User, issue *models.Issue) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_issue_resolved",
		observability.AttributeUserID(citizen.ID),
		observability.AttributeIssueID(issue.ID),
	)
	defer observability.FinishSpan(span, &err)

	body, err := renderTemplate(issueResolvedTemplate, map[string]interface{}{
		"Name":  citizen.FullName,
		"Title": issue.Title,
		"Notes": issue.ResolutionNotes.String,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Issue resolved: %s", issue.Title)
	return e.SendEmail(ctx, citizen.Email, subject, body)
}

// SendWelcomeEmail sends a welcome email to a newly registered user
func (e *EmailService) SendWelcomeEmail(ctx context.Context, user *models.User) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_welcome",
		observability.AttributeUserID(user.ID),
	)
	defer observability.FinishSpan(span, &err)

	body, err := renderTemplate(welcomeTemplate, map[string]interface{}{
		"Name": user.FullName,
	})
	if err != nil {
		return err
	}

	return e.SendEmail(ctx, user.Email, "Welcome to the civic platform", body)
}

// SendEmail sends a generic email with the given parameters
func (e *EmailService) SendEmail(ctx context.Context, to, subject, body string) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_email",
		attribute.String("email.to", to),
		attribute.String("email.subject", subject),
	)
	defer observability.FinishSpan(span, &err)

	if to == "" {
		return contextutils.ErrorWithContextf("recipient email address is empty")
	}

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping email send", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}

	if e.dialer == nil {
		return contextutils.ErrorWithContextf("email service not properly configured")
	}

	m := mail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", e.cfg.Email.SMTP.FromName, e.cfg.Email.SMTP.FromAddress))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err = e.dialer.DialAndSend(m); err != nil {
		e.logger.Error(ctx, "Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return contextutils.WrapError(err, "failed to send email")
	}

	e.logger.Info(ctx, "Email sent successfully", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})

	return nil
}

// IsEnabled returns whether email functionality is enabled
func (e *EmailService) IsEnabled() bool {
	return e.cfg.Email.Enabled && e.cfg.Email.SMTP.Host != ""
}

func renderTemplate(tmpl *template.Template, data map[string]interface{}) (result0 string, err error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", contextutils.WrapError(err, "failed to render email template")
	}
	return sb.String(), nil
}
