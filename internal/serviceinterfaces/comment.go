package serviceinterfaces

import (
	"context"

	"civicapp/internal/models"
)

// CommentServiceInterface defines operations for issue discussion threads.
type CommentServiceInterface interface {
	AddComment(ctx context.Context, issueID, userID int, content string) (*models.Comment, error)
	GetCommentByID(ctx context.Context, id int) (*models.Comment, error)
	GetCommentsByIssue(ctx context.Context, issueID int) ([]models.Comment, error)
	FlagComment(ctx context.Context, commentID int, reason string) (*models.Comment, error)
	UnflagComment(ctx context.Context, commentID int) (*models.Comment, error)
	GetFlaggedComments(ctx context.Context) ([]models.Comment, error)
	DeleteComment(ctx context.Context, commentID, requesterID int, requesterRole models.Role) error
}
