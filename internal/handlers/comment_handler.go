package handlers

import (
	"net/http"

	"civicapp/internal/config"
	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/serviceinterfaces"
	contextutils "civicapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// CommentHandler handles issue discussion and moderation endpoints.
type CommentHandler struct {
	commentService serviceinterfaces.CommentServiceInterface
	config         *config.Config
	logger         *observability.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(commentService serviceinterfaces.CommentServiceInterface, cfg *config.Config, logger *observability.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		config:         cfg,
		logger:         logger,
	}
}

// AddComment handles POST /v1/issues/:id/comments.
func (h *CommentHandler) AddComment(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "add_comment")
	defer observability.FinishSpan(span, nil)

	issueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeIssueID(issueID),
		observability.AttributeUserID(userID),
	)

	comment, err := h.commentService.AddComment(ctx, issueID, userID, req.Content)
	if err != nil {
		h.logger.Error(ctx, "Failed to add comment", err, map[string]interface{}{"issue_id": issueID, "user_id": userID})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /v1/issues/:id/comments.
func (h *CommentHandler) ListComments(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_comments")
	defer observability.FinishSpan(span, nil)

	issueID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeIssueID(issueID))

	comments, err := h.commentService.GetCommentsByIssue(ctx, issueID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// FlagComment handles POST /v1/comments/:id/flag.
func (h *CommentHandler) FlagComment(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "flag_comment")
	defer observability.FinishSpan(span, nil)

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.FlagCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeCommentID(commentID))

	comment, err := h.commentService.FlagComment(ctx, commentID, req.Reason)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// UnflagComment handles POST /v1/comments/:id/unflag (moderators).
func (h *CommentHandler) UnflagComment(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "unflag_comment")
	defer observability.FinishSpan(span, nil)

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeCommentID(commentID))

	comment, err := h.commentService.UnflagComment(ctx, commentID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// ListFlaggedComments handles GET /v1/comments/flagged (moderators).
func (h *CommentHandler) ListFlaggedComments(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_flagged_comments")
	defer observability.FinishSpan(span, nil)

	comments, err := h.commentService.GetFlaggedComments(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to list flagged comments", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeleteComment handles DELETE /v1/comments/:id.
// The service enforces that only the author, a moderator, or an admin may delete.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_comment")
	defer observability.FinishSpan(span, nil)

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role, err := CurrentIdentity(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	span.SetAttributes(
		observability.AttributeCommentID(commentID),
		observability.AttributeUserID(userID),
		observability.AttributeRole(role),
	)

	if err := h.commentService.DeleteComment(ctx, commentID, userID, role); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}
