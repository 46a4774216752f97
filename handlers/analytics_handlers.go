package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portalar/api/models"
	"portalar/api/services"
	"portalar/api/store"
)

type AnalyticsHandlers struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandlers(analytics *services.AnalyticsService) *AnalyticsHandlers {
	return &AnalyticsHandlers{analytics: analytics}
}

// TrackEvent ingests one engagement event. Responds 202: acceptance means
// the event was validated, not that it was durably stored.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var in models.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderError(c, models.NewValidationError("invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	eventID, err := h.analytics.Ingest(ctx, in, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"eventId": eventID})
}

// TrackBatch ingests up to 100 events in one request, all-or-nothing.
func (h *AnalyticsHandlers) TrackBatch(c *gin.Context) {
	var in models.BatchEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		renderError(c, models.NewValidationError("invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	recorded, err := h.analytics.IngestBatch(ctx, in.Events, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"recorded": recorded})
}

// parseQuery reads the optional start/end/eventType/limit filters.
func parseQuery(c *gin.Context) (store.Query, error) {
	var q store.Query

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, models.NewValidationError("invalid 'start' timestamp, expected RFC3339")
		}
		q.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, models.NewValidationError("invalid 'end' timestamp, expected RFC3339")
		}
		q.End = &t
	}
	if raw := c.Query("eventType"); raw != "" {
		q.EventType = raw
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return q, models.NewValidationError("invalid 'limit', expected a positive integer")
		}
		q.Limit = n
	}
	return q, nil
}

// GetMarkerEvents returns the filtered raw events for one marker, newest
// first. Admin only.
func (h *AnalyticsHandlers) GetMarkerEvents(c *gin.Context) {
	markerID := c.Param("markerId")

	q, err := parseQuery(c)
	if err != nil {
		renderError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	events, err := h.analytics.Events(ctx, markerID, q)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"markerId": markerID, "events": events, "count": len(events)})
}

// GetMarkerSummary returns the aggregate counters for one marker. A marker
// with no events yields an all-zero summary, never a 404. Admin only.
func (h *AnalyticsHandlers) GetMarkerSummary(c *gin.Context) {
	markerID := c.Param("markerId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	sum, err := h.analytics.Summary(ctx, markerID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// GetAllSummaries returns every marker's aggregate, most-scanned first.
// Admin only.
func (h *AnalyticsHandlers) GetAllSummaries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	sums, err := h.analytics.AllSummaries(ctx)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": sums, "count": len(sums)})
}
