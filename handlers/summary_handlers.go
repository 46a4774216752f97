package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"portalar/api/models"
	"portalar/api/services"
)

type SummaryHandlers struct {
	summarizer *services.Summarizer
	content    *services.ContentService
}

func NewSummaryHandlers(summarizer *services.Summarizer, content *services.ContentService) *SummaryHandlers {
	return &SummaryHandlers{summarizer: summarizer, content: content}
}

// Summarize returns an AI summary of an external URL without persisting
// anything. Admin only.
func (h *SummaryHandlers) Summarize(c *gin.Context) {
	var req models.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, models.NewValidationError("invalid request body", err.Error()))
		return
	}

	summary := h.summarizer.Summarize(c.Request.Context(), req.URL, req.MaxLength)
	c.JSON(http.StatusOK, summary)
}

// SummarizeAndSave summarizes a URL and stores the result as news content for
// the given marker, so one call turns an article link into scannable AR
// content. Admin only.
func (h *SummaryHandlers) SummarizeAndSave(c *gin.Context) {
	var req models.SummarizeAndSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, models.NewValidationError("invalid request body", err.Error()))
		return
	}

	summary := h.summarizer.Summarize(c.Request.Context(), req.URL, req.MaxLength)

	in := models.ContentInput{
		Type:    models.ContentTypeNews,
		Title:   summary.Headline,
		Summary: summary.Summary,
		URL:     req.URL,
		CTAText: "Read More",
		CTAURL:  req.URL,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	content, err := h.content.Upsert(ctx, req.MarkerID, in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "content": content})
}
