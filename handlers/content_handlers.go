package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"portalar/api/models"
	"portalar/api/services"
)

type ContentHandlers struct {
	content *services.ContentService
}

func NewContentHandlers(content *services.ContentService) *ContentHandlers {
	return &ContentHandlers{content: content}
}

// GetContent serves the record for one marker. Public: this is the endpoint
// the AR client hits on every scan.
func (h *ContentHandlers) GetContent(c *gin.Context) {
	markerID := c.Param("markerId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	content, err := h.content.Fetch(ctx, markerID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// UpsertContent fully replaces the record for a marker. Admin only.
func (h *ContentHandlers) UpsertContent(c *gin.Context) {
	markerID := c.Param("markerId")

	var in models.ContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderError(c, models.NewValidationError("invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	content, err := h.content.Upsert(ctx, markerID, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// DeleteContent removes the record for a marker. Admin only.
func (h *ContentHandlers) DeleteContent(c *gin.Context) {
	markerID := c.Param("markerId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.content.Remove(ctx, markerID); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": markerID})
}

// ListContent returns every record, most recently updated first. Admin only.
func (h *ContentHandlers) ListContent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	all, err := h.content.List(ctx)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": all, "count": len(all)})
}
