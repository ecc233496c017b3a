// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"civicapp/internal/models"
)

// IssueServiceInterface defines operations for the issue lifecycle.
type IssueServiceInterface interface {
	CreateIssue(ctx context.Context, citizenID int, req *models.CreateIssueRequest) (*models.Issue, error)
	GetIssueByID(ctx context.Context, id int) (*models.Issue, error)
	GetAllIssues(ctx context.Context) ([]models.Issue, error)
	GetIssuesPaginated(ctx context.Context, page, pageSize int, status, category, search string) ([]models.Issue, int, error)
	GetIssuesByCitizen(ctx context.Context, citizenID int) ([]models.Issue, error)
	GetIssuesByAssignedPolitician(ctx context.Context, politicianID int) ([]models.Issue, error)
	GetIssuesByStatus(ctx context.Context, status models.IssueStatus) ([]models.Issue, error)

	AssignIssue(ctx context.Context, issueID, politicianID int) (*models.Issue, error)
	RespondToIssue(ctx context.Context, issueID, politicianID int, response string) (*models.Issue, error)
	ResolveIssue(ctx context.Context, issueID, politicianID int, resolutionNotes string) (*models.Issue, error)
	UpdateIssueStatus(ctx context.Context, issueID int, status models.IssueStatus) (*models.Issue, error)
	DeleteIssue(ctx context.Context, issueID int) error

	CountIssuesByCategory(ctx context.Context) ([]models.CategoryCount, error)
	GetIssueStats(ctx context.Context) (*models.IssueStats, error)
}
