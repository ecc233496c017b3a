package services

import (
	"context"

	"civicapp/internal/config"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	contextutils "civicapp/internal/utils"
)

func newTestLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

// stubUserService serves canned users keyed by ID for service tests.
type stubUserService struct {
	UserService
	users map[int]*models.User
}

func newStubUserService(users ...*models.User) *stubUserService {
	m := map[int]*models.User{}
	for _, u := range users {
		m[u.ID] = u
	}
	return &stubUserService{users: m}
}

func (s *stubUserService) GetUserByID(_ context.Context, id int) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, contextutils.NewNotFoundError("user", id)
}

// recordingEmailService captures notifications instead of sending them.
type recordingEmailService struct {
	enabled     bool
	assignments []int
	responses   []int
	resolutions []int
	welcomes    []int
	failWith    error
}

func (r *recordingEmailService) SendIssueAssignmentNotification(_ context.Context, _ *models.User, issue *models.Issue) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.assignments = append(r.assignments, issue.ID)
	return nil
}

func (r *recordingEmailService) SendIssueResponseNotification(_ context.Context, _ *models.User, issue *models.Issue) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.responses = append(r.responses, issue.ID)
	return nil
}

func (r *recordingEmailService) SendIssueResolvedNotification(_ context.Context, _ *models.User, issue *models.Issue) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.resolutions = append(r.resolutions, issue.ID)
	return nil
}

func (r *recordingEmailService) SendWelcomeEmail(_ context.Context, user *models.User) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.welcomes = append(r.welcomes, user.ID)
	return nil
}

func (r *recordingEmailService) SendEmail(_ context.Context, _, _, _ string) error {
	return r.failWith
}

func (r *recordingEmailService) IsEnabled() bool {
	return r.enabled
}

func politicianUser(id int) *models.User {
	return &models.User{
		ID:       id,
		FullName: "Pat Politician",
		Email:    "pat@example.com",
		Role:     models.RolePolitician,
		Enabled:  true,
	}
}

func citizenUser(id int) *models.User {
	return &models.User{
		ID:       id,
		FullName: "Casey Citizen",
		Email:    "casey@example.com",
		Role:     models.RoleCitizen,
		Enabled:  true,
	}
}
