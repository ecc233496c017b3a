package serviceinterfaces

import (
	"context"

	"civicapp/internal/models"
)

// FeedbackServiceInterface defines operations for politician feedback.
type FeedbackServiceInterface interface {
	SubmitFeedback(ctx context.Context, citizenID int, req *models.CreateFeedbackRequest) (*models.Feedback, error)
	GetFeedbackByID(ctx context.Context, id int) (*models.Feedback, error)
	GetFeedbackForPolitician(ctx context.Context, politicianID int) ([]models.Feedback, error)
	GetFeedbackByCitizen(ctx context.Context, citizenID int) ([]models.Feedback, error)
	GetAverageRating(ctx context.Context, politicianID int) (float64, error)
	GetPoliticianStats(ctx context.Context, politicianID int) (*models.PoliticianStats, error)
	DeleteFeedback(ctx context.Context, id int) error
}
