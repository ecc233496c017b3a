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

// UpdateHandler handles politician news update endpoints.
type UpdateHandler struct {
	updateService serviceinterfaces.UpdateServiceInterface
	config        *config.Config
	logger        *observability.Logger
}

// NewUpdateHandler creates an UpdateHandler.
func NewUpdateHandler(updateService serviceinterfaces.UpdateServiceInterface, cfg *config.Config, logger *observability.Logger) *UpdateHandler {
	return &UpdateHandler{
		updateService: updateService,
		config:        cfg,
		logger:        logger,
	}
}

// CreateUpdate handles POST /v1/updates (politicians).
func (h *UpdateHandler) CreateUpdate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_update")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.CreateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeUserID(userID))

	update, err := h.updateService.CreateUpdate(ctx, userID, &req)
	if err != nil {
		h.logger.Error(ctx, "Failed to create update", err, map[string]interface{}{"politician_id": userID})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, update)
}

// ViewUpdate handles GET /v1/updates/:id, incrementing the view count.
func (h *UpdateHandler) ViewUpdate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "view_update")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeUpdateID(id))

	update, err := h.updateService.ViewUpdate(ctx, id)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// ListPublishedUpdates handles GET /v1/updates.
func (h *UpdateHandler) ListPublishedUpdates(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_published_updates")
	defer observability.FinishSpan(span, nil)

	updates, err := h.updateService.GetPublishedUpdates(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to list updates", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// ListMyUpdates handles GET /v1/updates/mine, returning the authenticated
// politician's updates including unpublished drafts.
func (h *UpdateHandler) ListMyUpdates(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_my_updates")
	defer observability.FinishSpan(span, nil)

	userID, err := GetCurrentUserID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}
	span.SetAttributes(observability.AttributeUserID(userID))

	updates, err := h.updateService.GetUpdatesByPolitician(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// ListUpdatesByPolitician handles GET /v1/politicians/:id/updates.
func (h *UpdateHandler) ListUpdatesByPolitician(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_updates_by_politician")
	defer observability.FinishSpan(span, nil)

	politicianID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeUserID(politicianID))

	updates, err := h.updateService.GetUpdatesByPolitician(ctx, politicianID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// EditUpdate handles PUT /v1/updates/:id. Only the owning politician may edit.
func (h *UpdateHandler) EditUpdate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "edit_update")
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

	var req models.CreateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindingError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeUpdateID(id),
		observability.AttributeUserID(userID),
	)

	update, err := h.updateService.EditUpdate(ctx, id, userID, &req)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// DeleteUpdate handles DELETE /v1/updates/:id.
// The service enforces that only the owner or an admin may delete.
func (h *UpdateHandler) DeleteUpdate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_update")
	defer observability.FinishSpan(span, nil)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, role, err := CurrentIdentity(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	span.SetAttributes(
		observability.AttributeUpdateID(id),
		observability.AttributeUserID(userID),
		observability.AttributeRole(role),
	)

	if err := h.updateService.DeleteUpdate(ctx, id, userID, role); err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Update deleted"})
}
