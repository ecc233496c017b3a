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

// CommentService implements CommentServiceInterface for issue discussion threads.
type CommentService struct {
	db     *sql.DB
	logger *observability.Logger
}

// Ensure CommentService implements the CommentServiceInterface
var _ serviceinterfaces.CommentServiceInterface = (*CommentService)(nil)

// NewCommentService creates a new CommentService instance.
func NewCommentService(db *sql.DB, logger *observability.Logger) *CommentService {
	if db == nil {
		panic("NewCommentService: db is nil")
	}
	if logger == nil {
		panic("NewCommentService: logger is nil")
	}
	return &CommentService{db: db, logger: logger}
}

const commentColumns = `cm.id, cm.content, cm.issue_id, cm.user_id, cm.flagged, cm.flag_reason, cm.created_at,
	u.full_name AS user_name, u.role AS user_role`

const commentFrom = `FROM comments cm
	JOIN users u ON u.id = cm.user_id`

func scanComment(row interface{ Scan(...interface{}) error }) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.Content, &c.IssueID, &c.UserID, &c.Flagged, &c.FlagReason, &c.CreatedAt,
		&c.UserName, &c.UserRole)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddComment validates and attaches a discussion entry to an issue.
func (s *CommentService) AddComment(ctx context.Context, issueID, userID int, content string) (result0 *models.Comment, err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "add_comment",
		observability.AttributeIssueID(issueID),
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	if !contextutils.ValidateLengthBetween(content, 1, 2000) {
		return nil, contextutils.NewValidationError("content", "must be between 1 and 2000 characters")
	}

	var exists bool
	if err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM issues WHERE id=$1)`, issueID).Scan(&exists); err != nil {
		return nil, contextutils.WrapError(err, "failed to check issue existence")
	}
	if !exists {
		return nil, contextutils.NewNotFoundError("issue", issueID)
	}

	if err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
		return nil, contextutils.WrapError(err, "failed to check author existence")
	}
	if !exists {
		return nil, contextutils.NewNotFoundError("user", userID)
	}

	query := `INSERT INTO comments (issue_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`
	var id int
	if err = s.db.QueryRowContext(ctx, query, issueID, userID, strings.TrimSpace(content)).Scan(&id); err != nil {
		return nil, contextutils.WrapError(err, "failed to insert comment")
	}

	s.logger.Info(ctx, "Comment added", map[string]interface{}{
		"comment_id": id,
		"issue_id":   issueID,
		"user_id":    userID,
	})

	return s.GetCommentByID(ctx, id)
}

// GetCommentByID fetches a single comment.
func (s *CommentService) GetCommentByID(ctx context.Context, id int) (result0 *models.Comment, err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "get_comment_by_id", observability.AttributeCommentID(id))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + commentColumns + ` ` + commentFrom + ` WHERE cm.id=$1`
	c, err := scanComment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("comment", id)
		}
		return nil, contextutils.WrapError(err, "failed to scan comment")
	}
	return c, nil
}

// GetCommentsByIssue returns an issue's discussion thread, oldest first.
func (s *CommentService) GetCommentsByIssue(ctx context.Context, issueID int) (result0 []models.Comment, err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "get_comments_by_issue", observability.AttributeIssueID(issueID))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + commentColumns + ` ` + commentFrom + ` WHERE cm.issue_id=$1 ORDER BY cm.created_at ASC`
	return s.queryComments(ctx, query, issueID)
}

// GetFlaggedComments returns the moderation queue, oldest flag first.
func (s *CommentService) GetFlaggedComments(ctx context.Context) (result0 []models.Comment, err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "get_flagged_comments")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + commentColumns + ` ` + commentFrom + ` WHERE cm.flagged ORDER BY cm.created_at ASC`
	return s.queryComments(ctx, query)
}

func (s *CommentService) queryComments(ctx context.Context, query string, args ...interface{}) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query comments")
	}
	defer func() {
		_ = rows.Close()
	}()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to scan comment row")
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// FlagComment marks a comment for moderation with a reason.
func (s *CommentService) FlagComment(ctx context.Context, commentID int, reason string) (result0 *models.Comment, err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "flag_comment", observability.AttributeCommentID(commentID))
	defer observability.FinishSpan(span, &err)

	if strings.TrimSpace(reason) == "" {
		return nil, contextutils.NewValidationError("reason", "is required")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE comments SET flagged=TRUE, flag_reason=$1 WHERE id=$2`,
		reason, commentID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to flag comment")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return nil, contextutils.NewNotFoundError("comment", commentID)
	}

	s.logger.Info(ctx, "Comment flagged", map[string]interface{}{
		"comment_id": commentID,
		"reason":     reason,
	})

	return s.GetCommentByID(ctx, commentID)
}

// UnflagComment clears a comment's flag and reason together.
func (s *CommentService) UnflagComment(ctx context.Context, commentID int) (result0 *models.Comment, err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "unflag_comment", observability.AttributeCommentID(commentID))
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx,
		`UPDATE comments SET flagged=FALSE, flag_reason=NULL WHERE id=$1`,
		commentID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to unflag comment")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return nil, contextutils.NewNotFoundError("comment", commentID)
	}

	return s.GetCommentByID(ctx, commentID)
}

// DeleteComment removes a comment. Authors may delete their own; moderators and admins may delete any.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, requesterID int, requesterRole models.Role) (err error) {
	ctx, span := observability.TraceCommentFunction(ctx, "delete_comment",
		observability.AttributeCommentID(commentID),
		observability.AttributeUserID(requesterID),
	)
	defer observability.FinishSpan(span, &err)

	comment, err := s.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	isModerator := requesterRole == models.RoleModerator || requesterRole == models.RoleAdmin
	if comment.UserID != requesterID && !isModerator {
		return contextutils.NewUnauthorizedError("only the author, a moderator, or an admin may delete a comment")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, commentID)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete comment")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("comment", commentID)
	}

	s.logger.Info(ctx, "Comment deleted", map[string]interface{}{
		"comment_id":   commentID,
		"requester_id": requesterID,
	})
	return nil
}
