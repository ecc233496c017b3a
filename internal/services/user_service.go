package services

import (
	"context"
	"database/sql"
	"strings"

	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements UserServiceInterface for managing user accounts.
type UserService struct {
	db     *sql.DB
	logger *observability.Logger
}

// Ensure UserService implements the UserServiceInterface
var _ serviceinterfaces.UserServiceInterface = (*UserService)(nil)

// NewUserService creates a new UserService instance.
func NewUserService(db *sql.DB, logger *observability.Logger) *UserService {
	if db == nil {
		panic("NewUserService: db is nil")
	}
	if logger == nil {
		panic("NewUserService: logger is nil")
	}
	return &UserService{db: db, logger: logger}
}

const userColumns = `id, full_name, email, password_hash, phone, constituency, profile_image, role, enabled, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Phone, &u.Constituency, &u.ProfileImage, &u.Role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "create_user",
		attribute.String("user.email", req.Email),
	)
	defer observability.FinishSpan(span, &err)

	if !contextutils.IsValidEmail(req.Email) {
		return nil, contextutils.NewValidationError("email", "must be a valid email address")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCitizen
	}
	if !role.IsValid() {
		return nil, contextutils.NewValidationError("role", "unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to hash password")
	}

	query := `INSERT INTO users (full_name, email, password_hash, phone, constituency, role, enabled)
	          VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	          RETURNING ` + userColumns
	row := s.db.QueryRowContext(ctx, query,
		req.FullName,
		strings.ToLower(req.Email),
		string(hash),
		sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		sql.NullString{String: req.Constituency, Valid: req.Constituency != ""},
		role,
	)
	user, err := scanUser(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, contextutils.WrapErrorf(contextutils.ErrRecordExists, "user with email %s already exists", req.Email)
		}
		return nil, contextutils.WrapError(err, "failed to insert user")
	}

	s.logger.Info(ctx, "User created", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

// GetUserByID fetches a single user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id int) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_id", observability.AttributeUserID(id))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("user", id)
		}
		return nil, contextutils.WrapError(err, "failed to scan user")
	}
	return user, nil
}

// GetUserByEmail fetches a single user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_email")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("user", email)
		}
		return nil, contextutils.WrapError(err, "failed to scan user")
	}
	return user, nil
}

// GetAllUsers returns all users ordered by creation time.
func (s *UserService) GetAllUsers(ctx context.Context) (result0 []models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_all_users")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	return s.queryUsers(ctx, query)
}

// GetUsersByRole returns all users with the given role.
func (s *UserService) GetUsersByRole(ctx context.Context, role models.Role) (result0 []models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_users_by_role", observability.AttributeRole(role))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + userColumns + ` FROM users WHERE role=$1 ORDER BY full_name`
	return s.queryUsers(ctx, query, role)
}

// GetPoliticiansByConstituency returns politicians serving the given constituency.
func (s *UserService) GetPoliticiansByConstituency(ctx context.Context, constituency string) (result0 []models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_politicians_by_constituency",
		attribute.String("user.constituency", constituency),
	)
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + userColumns + ` FROM users WHERE role=$1 AND constituency=$2 ORDER BY full_name`
	return s.queryUsers(ctx, query, models.RolePolitician, constituency)
}

func (s *UserService) queryUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query users")
	}
	defer func() {
		_ = rows.Close()
	}()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to scan user row")
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// AuthenticateUser verifies credentials and returns the matching enabled user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "authenticate_user")
	defer observability.FinishSpan(span, &err)

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if contextutils.GetErrorCode(err) == contextutils.ErrorCodeRecordNotFound {
			return nil, contextutils.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Enabled {
		return nil, contextutils.NewUnauthorizedError("account is disabled")
	}

	if !user.PasswordHash.Valid {
		return nil, contextutils.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)); err != nil {
		return nil, contextutils.ErrInvalidCredentials
	}

	return user, nil
}

// UpdateUserRole changes a user's role.
func (s *UserService) UpdateUserRole(ctx context.Context, userID int, role models.Role) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "update_user_role",
		observability.AttributeUserID(userID),
		observability.AttributeRole(role),
	)
	defer observability.FinishSpan(span, &err)

	if !role.IsValid() {
		return contextutils.NewValidationError("role", "unknown role")
	}

	result, err := s.db.ExecContext(ctx, `UPDATE users SET role=$1, updated_at=NOW() WHERE id=$2`, role, userID)
	if err != nil {
		return contextutils.WrapError(err, "failed to update user role")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("user", userID)
	}

	s.logger.Info(ctx, "User role updated", map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})
	return nil
}

// SetUserEnabled enables or disables a user account.
func (s *UserService) SetUserEnabled(ctx context.Context, userID int, enabled bool) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "set_user_enabled",
		observability.AttributeUserID(userID),
		attribute.Bool("user.enabled", enabled),
	)
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx, `UPDATE users SET enabled=$1, updated_at=NOW() WHERE id=$2`, enabled, userID)
	if err != nil {
		return contextutils.WrapError(err, "failed to update user status")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("user", userID)
	}
	return nil
}

// UpdateUserPassword replaces a user's password with a new bcrypt hash.
func (s *UserService) UpdateUserPassword(ctx context.Context, userID int, newPassword string) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "update_user_password", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if newPassword == "" {
		return contextutils.NewValidationError("password", "cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return contextutils.WrapError(err, "failed to hash password")
	}

	result, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, string(hash), userID)
	if err != nil {
		return contextutils.WrapError(err, "failed to update user password")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("user", userID)
	}
	return nil
}

// DeleteUser removes a user account.
func (s *UserService) DeleteUser(ctx context.Context, userID int) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "delete_user", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, userID)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete user")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("user", userID)
	}
	return nil
}

// EnsureAdminUserExists creates the bootstrap admin account when missing.
func (s *UserService) EnsureAdminUserExists(ctx context.Context, email, password string) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "ensure_admin_user_exists")
	defer observability.FinishSpan(span, &err)

	if email == "" || password == "" {
		s.logger.Warn(ctx, "Admin email or password not configured, skipping admin bootstrap")
		return nil
	}

	_, err = s.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if contextutils.GetErrorCode(err) != contextutils.ErrorCodeRecordNotFound {
		return err
	}

	_, err = s.CreateUser(ctx, &models.CreateUserRequest{
		FullName: "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return contextutils.WrapError(err, "failed to create admin user")
	}

	s.logger.Info(ctx, "Bootstrap admin user created", map[string]interface{}{"email": email})
	return nil
}
