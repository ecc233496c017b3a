package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"
)

// IssueService implements IssueServiceInterface and drives the issue lifecycle.
type IssueService struct {
	db           *sql.DB
	logger       *observability.Logger
	userService  serviceinterfaces.UserServiceInterface
	emailService serviceinterfaces.EmailService
}

// Ensure IssueService implements the IssueServiceInterface
var _ serviceinterfaces.IssueServiceInterface = (*IssueService)(nil)

// NewIssueService creates a new IssueService instance.
func NewIssueService(db *sql.DB, logger *observability.Logger, userService serviceinterfaces.UserServiceInterface, emailService serviceinterfaces.EmailService) *IssueService {
	if db == nil {
		panic("NewIssueService: db is nil")
	}
	if logger == nil {
		panic("NewIssueService: logger is nil")
	}
	if userService == nil {
		panic("NewIssueService: userService is nil")
	}
	return &IssueService{db: db, logger: logger, userService: userService, emailService: emailService}
}

const issueColumns = `i.id, i.title, i.description, i.category, i.location, i.status, i.citizen_id,
	i.assigned_politician_id, i.response, i.resolution_notes, i.created_at, i.resolved_at,
	c.full_name AS citizen_name, p.full_name AS assigned_politician_name,
	(SELECT COUNT(*) FROM comments cm WHERE cm.issue_id = i.id) AS comment_count`

const issueFrom = `FROM issues i
	JOIN users c ON c.id = i.citizen_id
	LEFT JOIN users p ON p.id = i.assigned_politician_id`

func scanIssue(row interface{ Scan(...interface{}) error }) (*models.Issue, error) {
	var i models.Issue
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.Location, &i.Status, &i.CitizenID,
		&i.AssignedPoliticianID, &i.Response, &i.ResolutionNotes, &i.CreatedAt, &i.ResolvedAt,
		&i.CitizenName, &i.AssignedPoliticianName, &i.CommentCount)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// CreateIssue validates and records a new citizen-reported issue.
func (s *IssueService) CreateIssue(ctx context.Context, citizenID int, req *models.CreateIssueRequest) (result0 *models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "create_issue",
		observability.AttributeUserID(citizenID),
		observability.AttributeCategory(req.Category),
	)
	defer observability.FinishSpan(span, &err)

	if !contextutils.ValidateLengthBetween(req.Title, 5, 200) {
		return nil, contextutils.NewValidationError("title", "must be between 5 and 200 characters")
	}
	if !contextutils.ValidateMinLength(req.Description, 20) {
		return nil, contextutils.NewValidationError("description", "must be at least 20 characters")
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, contextutils.NewValidationError("category", "is required")
	}

	// An assignee named at report time is stored as-is: the issue stays OPEN
	// and no assignment notification goes out until an explicit routing.
	var assignedPoliticianID sql.NullInt64
	if req.AssignedPoliticianID != nil {
		politician, err := s.userService.GetUserByID(ctx, *req.AssignedPoliticianID)
		if err != nil {
			return nil, err
		}
		if politician.Role != models.RolePolitician {
			return nil, contextutils.NewBadRequestError("assignee is not a politician")
		}
		assignedPoliticianID = sql.NullInt64{Int64: int64(*req.AssignedPoliticianID), Valid: true}
	}

	query := `INSERT INTO issues (title, description, category, location, status, citizen_id, assigned_politician_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int
	err = s.db.QueryRowContext(ctx, query,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		req.Category,
		sql.NullString{String: req.Location, Valid: req.Location != ""},
		models.IssueStatusOpen,
		citizenID,
		assignedPoliticianID,
	).Scan(&id)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert issue")
	}

	s.logger.Info(ctx, "Issue created", map[string]interface{}{
		"issue_id":   id,
		"citizen_id": citizenID,
		"category":   req.Category,
	})

	return s.GetIssueByID(ctx, id)
}

// GetIssueByID fetches a single issue with reporter and assignee names.
func (s *IssueService) GetIssueByID(ctx context.Context, id int) (result0 *models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_issue_by_id", observability.AttributeIssueID(id))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + issueColumns + ` ` + issueFrom + ` WHERE i.id=$1`
	issue, err := scanIssue(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("issue", id)
		}
		return nil, contextutils.WrapError(err, "failed to scan issue")
	}
	return issue, nil
}

// GetAllIssues returns all issues, newest first.
func (s *IssueService) GetAllIssues(ctx context.Context) (result0 []models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_all_issues")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + issueColumns + ` ` + issueFrom + ` ORDER BY i.created_at DESC`
	return s.queryIssues(ctx, query)
}

// GetIssuesPaginated returns a filtered page of issues plus the total count.
func (s *IssueService) GetIssuesPaginated(ctx context.Context, page, pageSize int, status, category, search string) (result0 []models.Issue, result1 int, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_issues_paginated",
		observability.AttributePage(page),
		observability.AttributePageSize(pageSize),
		observability.AttributeSearch(search),
	)
	defer observability.FinishSpan(span, &err)

	var conditions []string
	var args []interface{}
	idx := 1
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status=$%d", idx))
		args = append(args, status)
		idx++
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("i.category=$%d", idx))
		args = append(args, category)
		idx++
	}
	if search != "" {
		conditions = append(conditions, fmt.Sprintf("(i.title ILIKE $%d OR i.description ILIKE $%d)", idx, idx))
		args = append(args, "%"+search+"%")
		idx++
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM issues i %s", where)
	var total int
	if err = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to count issues")
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d",
		issueColumns, issueFrom, where, idx, idx+1)

	issues, err := s.queryIssues(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// GetIssuesByCitizen returns issues reported by the given citizen.
func (s *IssueService) GetIssuesByCitizen(ctx context.Context, citizenID int) (result0 []models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_issues_by_citizen", observability.AttributeUserID(citizenID))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + issueColumns + ` ` + issueFrom + ` WHERE i.citizen_id=$1 ORDER BY i.created_at DESC`
	return s.queryIssues(ctx, query, citizenID)
}

// GetIssuesByAssignedPolitician returns issues assigned to the given politician.
func (s *IssueService) GetIssuesByAssignedPolitician(ctx context.Context, politicianID int) (result0 []models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_issues_by_assigned_politician", observability.AttributeUserID(politicianID))
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + issueColumns + ` ` + issueFrom + ` WHERE i.assigned_politician_id=$1 ORDER BY i.created_at DESC`
	return s.queryIssues(ctx, query, politicianID)
}

// GetIssuesByStatus returns issues in the given lifecycle state.
func (s *IssueService) GetIssuesByStatus(ctx context.Context, status models.IssueStatus) (result0 []models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_issues_by_status", observability.AttributeStatus(status))
	defer observability.FinishSpan(span, &err)

	if !status.IsValid() {
		return nil, contextutils.NewValidationError("status", "unknown issue status")
	}

	query := `SELECT ` + issueColumns + ` ` + issueFrom + ` WHERE i.status=$1 ORDER BY i.created_at DESC`
	return s.queryIssues(ctx, query, status)
}

func (s *IssueService) queryIssues(ctx context.Context, query string, args ...interface{}) ([]models.Issue, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query issues")
	}
	defer func() {
		_ = rows.Close()
	}()

	issues := []models.Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to scan issue row")
		}
		issues = append(issues, *i)
	}
	return issues, rows.Err()
}

// lockIssue fetches an issue row inside a transaction with a row lock held.
func (s *IssueService) lockIssue(ctx context.Context, tx *sql.Tx, issueID int) (*models.Issue, error) {
	query := `SELECT id, title, description, category, location, status, citizen_id,
	          assigned_politician_id, response, resolution_notes, created_at, resolved_at
	          FROM issues WHERE id=$1 FOR UPDATE`
	var i models.Issue
	err := tx.QueryRowContext(ctx, query, issueID).Scan(&i.ID, &i.Title, &i.Description, &i.Category,
		&i.Location, &i.Status, &i.CitizenID, &i.AssignedPoliticianID, &i.Response, &i.ResolutionNotes,
		&i.CreatedAt, &i.ResolvedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.NewNotFoundError("issue", issueID)
		}
		return nil, contextutils.WrapError(err, "failed to lock issue row")
	}
	return &i, nil
}

// AssignIssue routes an issue to a politician and moves it to IN_PROGRESS.
func (s *IssueService) AssignIssue(ctx context.Context, issueID, politicianID int) (result0 *models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "assign_issue",
		observability.AttributeIssueID(issueID),
		observability.AttributeUserID(politicianID),
	)
	defer observability.FinishSpan(span, &err)

	politician, err := s.userService.GetUserByID(ctx, politicianID)
	if err != nil {
		return nil, err
	}
	if politician.Role != models.RolePolitician {
		return nil, contextutils.NewBadRequestError("assignee is not a politician")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = s.lockIssue(ctx, tx, issueID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE issues SET assigned_politician_id=$1, status=$2 WHERE id=$3`,
		politicianID, models.IssueStatusInProgress, issueID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to assign issue")
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapError(err, "failed to commit assignment")
	}

	issue, err := s.GetIssueByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "assignment", func() error {
		return s.emailService.SendIssueAssignmentNotification(ctx, politician, issue)
	})

	s.logger.Info(ctx, "Issue assigned", map[string]interface{}{
		"issue_id":      issueID,
		"politician_id": politicianID,
	})
	return issue, nil
}

// RespondToIssue records the assigned politician's official response.
func (s *IssueService) RespondToIssue(ctx context.Context, issueID, politicianID int, response string) (result0 *models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "respond_to_issue",
		observability.AttributeIssueID(issueID),
		observability.AttributeUserID(politicianID),
	)
	defer observability.FinishSpan(span, &err)

	if strings.TrimSpace(response) == "" {
		return nil, contextutils.NewValidationError("response", "is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	locked, err := s.lockIssue(ctx, tx, issueID)
	if err != nil {
		return nil, err
	}

	if !locked.AssignedPoliticianID.Valid || int(locked.AssignedPoliticianID.Int64) != politicianID {
		return nil, contextutils.NewUnauthorizedError("only the assigned politician may respond to this issue")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE issues SET response=$1, status=$2 WHERE id=$3`,
		response, models.IssueStatusInProgress, issueID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to record response")
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapError(err, "failed to commit response")
	}

	issue, err := s.GetIssueByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	s.notifyCitizen(ctx, issue, "response", s.emailService.SendIssueResponseNotification)

	return issue, nil
}

// ResolveIssue marks an issue resolved by its assigned politician.
func (s *IssueService) ResolveIssue(ctx context.Context, issueID, politicianID int, resolutionNotes string) (result0 *models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "resolve_issue",
		observability.AttributeIssueID(issueID),
		observability.AttributeUserID(politicianID),
	)
	defer observability.FinishSpan(span, &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	locked, err := s.lockIssue(ctx, tx, issueID)
	if err != nil {
		return nil, err
	}

	if !locked.AssignedPoliticianID.Valid || int(locked.AssignedPoliticianID.Int64) != politicianID {
		return nil, contextutils.NewUnauthorizedError("only the assigned politician may resolve this issue")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE issues SET status=$1, resolution_notes=$2, resolved_at=NOW() WHERE id=$3`,
		models.IssueStatusResolved,
		sql.NullString{String: resolutionNotes, Valid: resolutionNotes != ""},
		issueID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to resolve issue")
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapError(err, "failed to commit resolution")
	}

	issue, err := s.GetIssueByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	s.notifyCitizen(ctx, issue, "resolution", s.emailService.SendIssueResolvedNotification)

	s.logger.Info(ctx, "Issue resolved", map[string]interface{}{
		"issue_id":      issueID,
		"politician_id": politicianID,
	})
	return issue, nil
}

// UpdateIssueStatus is the administrative status override.
func (s *IssueService) UpdateIssueStatus(ctx context.Context, issueID int, status models.IssueStatus) (result0 *models.Issue, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "update_issue_status",
		observability.AttributeIssueID(issueID),
		observability.AttributeStatus(status),
	)
	defer observability.FinishSpan(span, &err)

	if !status.IsValid() {
		return nil, contextutils.NewValidationError("status", "unknown issue status")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	locked, err := s.lockIssue(ctx, tx, issueID)
	if err != nil {
		return nil, err
	}

	// Entering a terminal state stamps resolved_at once; it is never
	// overwritten or cleared by later overrides.
	resolvedAt := locked.ResolvedAt
	if (status == models.IssueStatusResolved || status == models.IssueStatusClosed) && !resolvedAt.Valid {
		resolvedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE issues SET status=$1, resolved_at=$2 WHERE id=$3`,
		status, resolvedAt, issueID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to update issue status")
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapError(err, "failed to commit status update")
	}

	return s.GetIssueByID(ctx, issueID)
}

// DeleteIssue removes an issue; its comments go with it via the cascade.
func (s *IssueService) DeleteIssue(ctx context.Context, issueID int) (err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "delete_issue", observability.AttributeIssueID(issueID))
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id=$1`, issueID)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete issue")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.NewNotFoundError("issue", issueID)
	}

	s.logger.Info(ctx, "Issue deleted", map[string]interface{}{"issue_id": issueID})
	return nil
}

// CountIssuesByCategory tallies issues per category.
func (s *IssueService) CountIssuesByCategory(ctx context.Context) (result0 []models.CategoryCount, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "count_issues_by_category")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM issues GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to count issues by category")
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan category count")
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// GetIssueStats summarizes issue volume and resolution speed.
func (s *IssueService) GetIssueStats(ctx context.Context) (result0 *models.IssueStats, err error) {
	ctx, span := observability.TraceIssueFunction(ctx, "get_issue_stats")
	defer observability.FinishSpan(span, &err)

	stats := &models.IssueStats{
		CountByStatus: map[models.IssueStatus]int{},
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM issues GROUP BY status`)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to count issues by status")
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var status models.IssueStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan status count")
		}
		stats.CountByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate status counts")
	}

	stats.CountByCategory, err = s.CountIssuesByCategory(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0), 0)
	          FROM issues WHERE resolved_at IS NOT NULL`
	if err = s.db.QueryRowContext(ctx, query).Scan(&stats.AverageResolutionHours); err != nil {
		return nil, contextutils.WrapError(err, "failed to compute average resolution time")
	}

	return stats, nil
}

// notify runs a notification send and logs failures without surfacing them.
func (s *IssueService) notify(ctx context.Context, kind string, send func() error) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}
	if err := send(); err != nil {
		s.logger.Warn(ctx, "Issue notification failed", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
	}
}

func (s *IssueService) notifyCitizen(ctx context.Context, issue *models.Issue, kind string, send func(context.Context, *models.User, *models.Issue) error) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}
	citizen, err := s.userService.GetUserByID(ctx, issue.CitizenID)
	if err != nil {
		s.logger.Warn(ctx, "Could not load citizen for notification", map[string]interface{}{
			"issue_id": issue.ID,
			"error":    err.Error(),
		})
		return
	}
	s.notify(ctx, kind, func() error {
		return send(ctx, citizen, issue)
	})
}
