package handlers

import (
	"net/http"
	"strconv"

	"civicapp/internal/config"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// IssueHandler handles issue lifecycle endpoints.
type IssueHandler struct {
	issueService serviceinterfaces.IssueServiceInterface
	config       *config.Config
	logger       *observability.Logger
}

// NewIssueHandler creates an IssueHandler.
func NewIssueHandler(issueService serviceinterfaces.IssueServiceInterface, cfg *config.Config, logger *observability.Logger) *IssueHandler {
	return &IssueHandler{
		issueService: issueService,
		config:       cfg,
		logger:       logger,
	}
}

func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		HandleValidationError(c, name, c.Param(name), "must be a positive integer")
		return 0, false
	}
	return id, true
}

// CreateIssue handles POST /v1/issues.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_issue")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeUserID(userID),
		observability.AttributeCategory(req.Category),
	)

	issue, err := h.issueService.CreateIssue(ctx, userID, &req)
	if err != nil {
		h.logger.Error(ctx, "Failed to create issue", err, map[string]interface{}{"citizen_id": userID})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetIssue handles GET /v1/issues/:id.
func (h *IssueHandler) GetIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_issue")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeIssueID(id))

	issue, err := h.issueService.GetIssueByID(ctx, id)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ListIssues handles GET /v1/issues with pagination and filters.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_issues")
	defer observability.FinishSpan(span, nil)

	page, pageSize := ParsePagination(c)
	filters := ParseFilters(c, "status", "category", "search")

	span.SetAttributes(
		observability.AttributePage(page),
		observability.AttributePageSize(pageSize),
	)

	if status := filters["status"]; status != "" && !models.IssueStatus(status).IsValid() {
		HandleValidationError(c, "status", status, "unknown issue status")
		return
	}

	issues, total, err := h.issueService.GetIssuesPaginated(ctx, page, pageSize, filters["status"], filters["category"], filters["search"])
	if err != nil {
		h.logger.Error(ctx, "Failed to list issues", err, nil)
		HandleAppError(c, err)
		return
	}

	WritePaginated(c, "issues", issues, page, pageSize, total, nil)
}

// ListMyIssues handles GET /v1/issues/mine.
func (h *IssueHandler) ListMyIssues(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_my_issues")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}
	span.SetAttributes(observability.AttributeUserID(userID))

	issues, err := h.issueService.GetIssuesByCitizen(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// ListAssignedIssues handles GET /v1/issues/assigned for politicians.
func (h *IssueHandler) ListAssignedIssues(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_assigned_issues")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}
	span.SetAttributes(observability.AttributeUserID(userID))

	issues, err := h.issueService.GetIssuesByAssignedPolitician(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// AssignIssue handles POST /v1/issues/:id/assign.
func (h *IssueHandler) AssignIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "assign_issue")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.AssignIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeIssueID(id),
		observability.AttributeUserID(req.PoliticianID),
	)

	issue, err := h.issueService.AssignIssue(ctx, id, req.PoliticianID)
	if err != nil {
		h.logger.Error(ctx, "Failed to assign issue", err, map[string]interface{}{"issue_id": id, "politician_id": req.PoliticianID})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// RespondToIssue handles POST /v1/issues/:id/respond.
func (h *IssueHandler) RespondToIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "respond_to_issue")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.RespondToIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeIssueID(id),
		observability.AttributeUserID(userID),
	)

	issue, err := h.issueService.RespondToIssue(ctx, id, userID, req.Response)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ResolveIssue handles POST /v1/issues/:id/resolve.
func (h *IssueHandler) ResolveIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "resolve_issue")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.ResolveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeIssueID(id),
		observability.AttributeUserID(userID),
	)

	issue, err := h.issueService.ResolveIssue(ctx, id, userID, req.ResolutionNotes)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus handles PUT /v1/issues/:id/status (admin override).
func (h *IssueHandler) UpdateIssueStatus(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "update_issue_status")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeIssueID(id),
		observability.AttributeStatus(req.Status),
	)

	issue, err := h.issueService.UpdateIssueStatus(ctx, id, req.Status)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// DeleteIssue handles DELETE /v1/issues/:id (admin only).
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_issue")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeIssueID(id))

	if err := h.issueService.DeleteIssue(ctx, id); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Issue deleted"})
}

// GetIssueStats handles GET /v1/issues/stats.
func (h *IssueHandler) GetIssueStats(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_issue_stats")
	defer observability.FinishSpan(span, nil)

	stats, err := h.issueService.GetIssueStats(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to compute issue stats", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CountIssuesByCategory handles GET /v1/issues/categories.
func (h *IssueHandler) CountIssuesByCategory(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "count_issues_by_category")
	defer observability.FinishSpan(span, nil)

	counts, err := h.issueService.CountIssuesByCategory(ctx)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": counts})
}
