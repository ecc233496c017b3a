package serviceinterfaces

import (
	"context"

	"civicapp/internal/models"
)

// UserServiceInterface defines operations for user accounts and roles.
type UserServiceInterface interface {
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	GetPoliticiansByConstituency(ctx context.Context, constituency string) ([]models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	UpdateUserRole(ctx context.Context, userID int, role models.Role) error
	SetUserEnabled(ctx context.Context, userID int, enabled bool) error
	DeleteUser(ctx context.Context, userID int) error
	EnsureAdminUserExists(ctx context.Context, email, password string) error
}
