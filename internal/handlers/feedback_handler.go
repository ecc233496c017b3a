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

// FeedbackHandler handles politician feedback endpoints.
type FeedbackHandler struct {
	feedbackService serviceinterfaces.FeedbackServiceInterface
	config          *config.Config
	logger          *observability.Logger
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(feedbackService serviceinterfaces.FeedbackServiceInterface, cfg *config.Config, logger *observability.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		config:          cfg,
		logger:          logger,
	}
}

// SubmitFeedback handles POST /v1/feedback.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeUserID(userID),
	)

	feedback, err := h.feedbackService.SubmitFeedback(ctx, userID, &req)
	if err != nil {
		h.logger.Error(ctx, "Failed to submit feedback", err, map[string]interface{}{"citizen_id": userID, "politician_id": req.PoliticianID})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

// ListFeedbackForPolitician handles GET /v1/politicians/:id/feedback.
func (h *FeedbackHandler) ListFeedbackForPolitician(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_feedback_for_politician")
	defer observability.FinishSpan(span, nil)

	politicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeUserID(politicianID))

	feedback, err := h.feedbackService.GetFeedbackForPolitician(ctx, politicianID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// ListMyFeedback handles GET /v1/feedback/mine.
func (h *FeedbackHandler) ListMyFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_my_feedback")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}
	span.SetAttributes(observability.AttributeUserID(userID))

	feedback, err := h.feedbackService.GetFeedbackByCitizen(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// GetPoliticianStats handles GET /v1/politicians/:id/stats.
func (h *FeedbackHandler) GetPoliticianStats(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_politician_stats")
	defer observability.FinishSpan(span, nil)

	politicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeUserID(politicianID))

	stats, err := h.feedbackService.GetPoliticianStats(ctx, politicianID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAverageRating handles GET /v1/politicians/:id/rating.
func (h *FeedbackHandler) GetAverageRating(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_average_rating")
	defer observability.FinishSpan(span, nil)

	politicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeUserID(politicianID))

	avg, err := h.feedbackService.GetAverageRating(ctx, politicianID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"politician_id": politicianID, "average_rating": avg})
}

// DeleteFeedback handles DELETE /v1/feedback/:id (admin only).
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_feedback")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.feedbackService.DeleteFeedback(ctx, id); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback deleted"})
}
