package services

import (
	"context"
	"database/sql"

	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// FeedbackService implements FeedbackServiceInterface for politician ratings.
type FeedbackService struct {
	db          *sql.DB
	logger      *observability.Logger
	userService serviceinterfaces.UserServiceInterface
}

// Ensure FeedbackService implements the FeedbackServiceInterface
var _ serviceinterfaces.FeedbackServiceInterface = (*FeedbackService)(nil)

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService(db *sql.DB, logger *observability.Logger, userService serviceinterfaces.UserServiceInterface) *FeedbackService {
	if db == nil {
		panic("NewFeedbackService: db is nil")
	}
	if logger == nil {
		panic("NewFeedbackService: logger is nil")
	}
	if userService == nil {
		panic("NewFeedbackService: userService is nil")
	}
	return &FeedbackService{db: db, logger: logger, userService: userService}
}

const feedbackColumns = `f.id, f.rating, f.comment, f.category, f.citizen_id, f.politician_id, f.created_at,
	c.full_name AS citizen_name, p.full_name AS politician_name`

const feedbackFrom = `FROM feedback f
	JOIN users c ON c.id = f.citizen_id
	JOIN users p ON p.id = f.politician_id`

func scanFeedback(row interface{ Scan(...interface{}) error }) (*models.Feedback, error) {
	var f models.Feedback
	err := row.Scan(&f.ID, &f.Rating, &f.Comment, &f.Category, &f.CitizenID, &f.PoliticianID, &f.CreatedAt,
		&f.CitizenName, &f.PoliticianName)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SubmitFeedback validates and records a citizen's rating of a politician.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, citizenID int, req *models.CreateFeedbackRequest) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "submit_feedback",
		observability.AttributeUserID(citizenID),
		attribute.Int("feedback.politician_id", req.PoliticianID),
		attribute.Int("feedback.rating", req.Rating),
	)
	defer observability.FinishSpan(span, &err)

	if req.Rating < 1 || req.Rating > 5 {
		return nil, contextutils.NewValidationError("rating", "must be between 1 and 5")
	}
	if len(req.Comment) > 1000 {
		return nil, contextutils.NewValidationError("comment", "must be at most 1000 characters")
	}

	politician, err := s.userService.GetUserByID(ctx, req.PoliticianID)
	if err != nil {
		return nil, err
	}
	if politician.Role != models.RolePolitician {
		return nil, contextutils.NewBadRequestError("target user is not a politician")
	}

	query := `INSERT INTO feedback (citizen_id, politician_id, rating, comment, category)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err = s.db.QueryRowContext(ctx, query,
		citizenID,
		req.PoliticianID,
		req.Rating,
		sql.NullString{String: req.Comment, Valid: req.Comment != ""},
		sql.NullString{String: req.Category, Valid: req.Category != ""},
	).Scan(&id)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert feedback")
	}

	s.logger.Info(ctx, "Feedback submitted", map[string]interface{}{
		"feedback_id":   id,
		"politician_id": req.PoliticianID,
		"rating":        req.Rating,
	})

	return s.GetFeedbackByID(ctx, id)
}

// GetFeedbackByID fetches a single feedback entry.
func (s *FeedbackService) GetFeedbackByID(ctx context.Context, id int) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_feedback_by_id", attribute.Int("feedback.id", id))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + feedbackColumns + ` ` + feedbackFrom + ` WHERE f.id=$1`
	fb, err := scanFeedback(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("feedback", id)
		}
		return nil, contextutils.WrapError(err, "failed to scan feedback")
	}
	return fb, nil
}

// GetFeedbackForPolitician returns all feedback received by a politician, newest first.
func (s *FeedbackService) GetFeedbackForPolitician(ctx context.Context, politicianID int) (result0 []models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_feedback_for_politician", observability.AttributeUserID(politicianID))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + feedbackColumns + ` ` + feedbackFrom + ` WHERE f.politician_id=$1 ORDER BY f.created_at DESC`
	return s.queryFeedback(ctx, query, politicianID)
}

// GetFeedbackByCitizen returns all feedback submitted by a citizen, newest first.
func (s *FeedbackService) GetFeedbackByCitizen(ctx context.Context, citizenID int) (result0 []models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_feedback_by_citizen", observability.AttributeUserID(citizenID))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + feedbackColumns + ` ` + feedbackFrom + ` WHERE f.citizen_id=$1 ORDER BY f.created_at DESC`
	return s.queryFeedback(ctx, query, citizenID)
}

func (s *FeedbackService) queryFeedback(ctx context.Context, query string, args ...interface{}) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query feedback")
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to scan feedback row")
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

// GetAverageRating returns the politician's mean rating, 0.0 when no feedback exists.
func (s *FeedbackService) GetAverageRating(ctx context.Context, politicianID int) (result0 float64, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_average_rating", observability.AttributeUserID(politicianID))
	defer observability.FinishSpan(span, &err)

	var avg float64
	query := `SELECT COALESCE(AVG(rating), 0.0) FROM feedback WHERE politician_id=$1`
	if err = s.db.QueryRowContext(ctx, query, politicianID).Scan(&avg); err != nil {
		return 0, contextutils.WrapError(err, "failed to compute average rating")
	}
	return avg, nil
}

// GetPoliticianStats aggregates average rating and total feedback count.
func (s *FeedbackService) GetPoliticianStats(ctx context.Context, politicianID int) (result0 *models.PoliticianStats, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_politician_stats", observability.AttributeUserID(politicianID))
	defer observability.FinishSpan(span, &err)

	var stats models.PoliticianStats
	query := `SELECT COALESCE(AVG(rating), 0.0), COUNT(*) FROM feedback WHERE politician_id=$1`
	if err = s.db.QueryRowContext(ctx, query, politicianID).Scan(&stats.AverageRating, &stats.TotalFeedback); err != nil {
		return nil, contextutils.WrapError(err, "failed to compute politician stats")
	}
	return &stats, nil
}

// DeleteFeedback removes a single feedback entry by ID.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, id int) (err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "delete_feedback", attribute.Int("feedback.id", id))
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id=$1`, id)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete feedback")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("feedback", id)
	}
	return nil
}
