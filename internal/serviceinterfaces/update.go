package serviceinterfaces

import (
	"context"

	"civicapp/internal/models"
)

// UpdateServiceInterface defines operations for politician news updates.
type UpdateServiceInterface interface {
	CreateUpdate(ctx context.Context, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error)
	// ViewUpdate fetches an update and increments its view count.
	ViewUpdate(ctx context.Context, id int) (*models.Update, error)
	GetUpdateByID(ctx context.Context, id int) (*models.Update, error)
	GetPublishedUpdates(ctx context.Context) ([]models.Update, error)
	GetUpdatesByPolitician(ctx context.Context, politicianID int) ([]models.Update, error)
	EditUpdate(ctx context.Context, updateID, politicianID int, req *models.CreateUpdateRequest) (*models.Update, error)
	DeleteUpdate(ctx context.Context, updateID, requesterID int, requesterRole models.Role) error
}
