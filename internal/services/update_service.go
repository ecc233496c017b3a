package services

import (
	"context"
	"database/sql"
	"strings"

	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"
)

// UpdateService implements UpdateServiceInterface for politician news posts.
type UpdateService struct {
	db     *sql.DB
	logger *observability.Logger
}

// Ensure UpdateService implements the UpdateServiceInterface
var _ serviceinterfaces.UpdateServiceInterface = (*UpdateService)(nil)

// NewUpdateService creates a new UpdateService instance.
func NewUpdateService(db *sql.DB, logger *observability.Logger) *UpdateService {
	if db == nil {
		panic("NewUpdateService: db is nil")
	}
	if logger == nil {
		panic("NewUpdateService: logger is nil")
	}
	return &UpdateService{db: db, logger: logger}
}

const updateColumns = `up.id, up.title, up.content, up.category, up.image_url, up.published, up.view_count,
	up.politician_id, up.created_at, up.updated_at, u.full_name AS politician_name`

const updateFrom = `FROM updates up
	JOIN users u ON u.id = up.politician_id`

func scanUpdate(row interface{ Scan(...interface{}) error }) (*models.Update, error) {
	var u models.Update
	err := row.Scan(&u.ID, &u.Title, &u.Content, &u.Category, &u.ImageURL, &u.Published, &u.ViewCount,
		&u.PoliticianID, &u.CreatedAt, &u.UpdatedAt, &u.PoliticianName)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func validateUpdateRequest(req *models.CreateUpdateRequest) error {
	if !contextutils.ValidateLengthBetween(req.Title, 5, 200) {
		return contextutils.NewValidationError("title", "must be between 5 and 200 characters")
	}
	if !contextutils.ValidateMinLength(req.Content, 20) {
		return contextutils.NewValidationError("content", "must be at least 20 characters")
	}
	return nil
}

// CreateUpdate publishes a news post for a politician.
func (s *UpdateService) CreateUpdate(ctx context.Context, politicianID int, req *models.CreateUpdateRequest) (result0 *models.Update, err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "create_update", observability.AttributeUserID(politicianID))
	defer observability.FinishSpan(span, &err)

	if err = validateUpdateRequest(req); err != nil {
		return nil, err
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	query := `INSERT INTO updates (politician_id, title, content, category, image_url, published)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	err = s.db.QueryRowContext(ctx, query,
		politicianID,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Content),
		sql.NullString{String: req.Category, Valid: req.Category != ""},
		sql.NullString{String: req.ImageURL, Valid: req.ImageURL != ""},
		published,
	).Scan(&id)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert update")
	}

	s.logger.Info(ctx, "Update created", map[string]interface{}{
		"update_id":     id,
		"politician_id": politicianID,
		"published":     published,
	})

	return s.GetUpdateByID(ctx, id)
}

// GetUpdateByID fetches a single update without touching the view count.
func (s *UpdateService) GetUpdateByID(ctx context.Context, id int) (result0 *models.Update, err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "get_update_by_id", observability.AttributeUpdateID(id))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + updateColumns + ` ` + updateFrom + ` WHERE up.id=$1`
	u, err := scanUpdate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("update", id)
		}
		return nil, contextutils.WrapError(err, "failed to scan update")
	}
	return u, nil
}

// ViewUpdate fetches an update and increments its view count atomically.
func (s *UpdateService) ViewUpdate(ctx context.Context, id int) (result0 *models.Update, err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "view_update", observability.AttributeUpdateID(id))
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx, `UPDATE updates SET view_count = view_count + 1 WHERE id=$1`, id)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to increment view count")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return nil, contextutils.NewNotFoundError("update", id)
	}

	return s.GetUpdateByID(ctx, id)
}

// GetPublishedUpdates returns all published updates, newest first.
func (s *UpdateService) GetPublishedUpdates(ctx context.Context) (result0 []models.Update, err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "get_published_updates")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + updateColumns + ` ` + updateFrom + ` WHERE up.published ORDER BY up.created_at DESC`
	return s.queryUpdates(ctx, query)
}

// GetUpdatesByPolitician returns all of a politician's updates including drafts.
func (s *UpdateService) GetUpdatesByPolitician(ctx context.Context, politicianID int) (result0 []models.Update, err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "get_updates_by_politician", observability.AttributeUserID(politicianID))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + updateColumns + ` ` + updateFrom + ` WHERE up.politician_id=$1 ORDER BY up.created_at DESC`
	return s.queryUpdates(ctx, query, politicianID)
}

func (s *UpdateService) queryUpdates(ctx context.Context, query string, args ...interface{}) ([]models.Update, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query updates")
	}
	defer func() {
		_ = rows.Close()
	}()

	updates := []models.Update{}
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to scan update row")
		}
		updates = append(updates, *u)
	}
	return updates, rows.Err()
}

// EditUpdate lets the owning politician edit their post.
func (s *UpdateService) EditUpdate(ctx context.Context, updateID, politicianID int, req *models.CreateUpdateRequest) (result0 *models.Update, err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "edit_update",
		observability.AttributeUpdateID(updateID),
		observability.AttributeUserID(politicianID),
	)
	defer observability.FinishSpan(span, &err)

	if err = validateUpdateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.GetUpdateByID(ctx, updateID)
	if err != nil {
		return nil, err
	}
	if existing.PoliticianID != politicianID {
		return nil, contextutils.NewUnauthorizedError("only the author may edit this update")
	}

	published := existing.Published
	if req.Published != nil {
		published = *req.Published
	}

	query := `UPDATE updates SET title=$1, content=$2, category=$3, image_url=$4, published=$5, updated_at=NOW()
	          WHERE id=$6`
	_, err = s.db.ExecContext(ctx, query,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Content),
		sql.NullString{String: req.Category, Valid: req.Category != ""},
		sql.NullString{String: req.ImageURL, Valid: req.ImageURL != ""},
		published,
		updateID,
	)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to edit update")
	}

	return s.GetUpdateByID(ctx, updateID)
}

// DeleteUpdate removes a post. Owners may delete their own; admins may delete any.
func (s *UpdateService) DeleteUpdate(ctx context.Context, updateID, requesterID int, requesterRole models.Role) (err error) {
	ctx, span := observability.TraceUpdateFunction(ctx, "delete_update",
		observability.AttributeUpdateID(updateID),
		observability.AttributeUserID(requesterID),
	)
	defer observability.FinishSpan(span, &err)

	existing, err := s.GetUpdateByID(ctx, updateID)
	if err != nil {
		return err
	}
	if existing.PoliticianID != requesterID && requesterRole != models.RoleAdmin {
		return contextutils.NewUnauthorizedError("only the author or an admin may delete this update")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM updates WHERE id=$1`, updateID)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete update")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("update", updateID)
	}

	s.logger.Info(ctx, "Update deleted", map[string]interface{}{
		"update_id":    updateID,
		"requester_id": requesterID,
	})
	return nil
}
