package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portalar/api/models"
	"portalar/api/store"
	"portalar/api/utils"
)

// MaxBatchSize bounds one batch ingest request.
const MaxBatchSize = 100

// AnalyticsService ingests engagement events and serves aggregate summaries.
type AnalyticsService struct {
	store store.Store
}

func NewAnalyticsService(s store.Store) *AnalyticsService {
	return &AnalyticsService{store: s}
}

func validateEvent(in models.EventInput) error {
	if in.MarkerID == "" {
		return fmt.Errorf("markerId is required")
	}
	if !utils.IsValidEventType(in.EventType) {
		return fmt.Errorf("invalid event type '%s'", in.EventType)
	}
	if in.EventType == models.EventTypeViewDuration && in.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	return nil
}

func buildEvent(in models.EventInput, userAgent, ipAddress string) models.AnalyticsEvent {
	ts := time.Now().UTC()
	if in.Timestamp != nil {
		ts = in.Timestamp.UTC()
	}
	return models.AnalyticsEvent{
		EventID:   uuid.New().String(),
		MarkerID:  in.MarkerID,
		EventType: in.EventType,
		SessionID: in.SessionID,
		Timestamp: ts,
		Duration:  in.Duration,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		Metadata:  in.Metadata,
	}
}

// Ingest validates and records one event. A storage failure is logged and
// dropped rather than returned: analytics must never abort the user-facing
// action that produced the signal.
func (s *AnalyticsService) Ingest(ctx context.Context, in models.EventInput, userAgent, ipAddress string) (string, error) {
	if err := validateEvent(in); err != nil {
		return "", models.NewValidationError(err.Error())
	}

	ev := buildEvent(in, userAgent, ipAddress)
	if _, err := s.store.RecordAnalyticsEvent(ctx, ev); err != nil {
		log.Error().Err(err).Str("marker_id", ev.MarkerID).Str("event_type", ev.EventType).
			Msg("analytics event dropped")
	}
	return ev.EventID, nil
}

// IngestBatch records 1-100 events all-or-nothing: the whole batch is
// validated first and a single malformed element rejects it with one detail
// line per offender, storing nothing.
func (s *AnalyticsService) IngestBatch(ctx context.Context, inputs []models.EventInput, userAgent, ipAddress string) (int, error) {
	if len(inputs) == 0 {
		return 0, models.NewValidationError("events must contain at least 1 element")
	}
	if len(inputs) > MaxBatchSize {
		return 0, models.NewValidationError(fmt.Sprintf("events must contain at most %d elements", MaxBatchSize))
	}

	var details []string
	for i, in := range inputs {
		if err := validateEvent(in); err != nil {
			details = append(details, fmt.Sprintf("events[%d]: %v", i, err))
		}
	}
	if len(details) > 0 {
		return 0, models.NewValidationError("invalid events in batch", details...)
	}

	recorded := 0
	for _, in := range inputs {
		ev := buildEvent(in, userAgent, ipAddress)
		if _, err := s.store.RecordAnalyticsEvent(ctx, ev); err != nil {
			log.Error().Err(err).Int("recorded", recorded).Msg("batch ingest aborted")
			return recorded, models.NewStorageError("failed to record event batch")
		}
		recorded++
	}
	return recorded, nil
}

// Events returns the filtered event list for a marker, newest first.
func (s *AnalyticsService) Events(ctx context.Context, markerID string, q store.Query) ([]models.AnalyticsEvent, error) {
	events, err := s.store.GetAnalytics(ctx, markerID, q)
	if err != nil {
		log.Error().Err(err).Str("marker_id", markerID).Msg("analytics query failed")
		return nil, models.NewStorageError("failed to query analytics")
	}
	return events, nil
}

// Summary returns the aggregate for one marker; all fields are zero when the
// marker has no events.
func (s *AnalyticsService) Summary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error) {
	sum, err := s.store.GetAnalyticsSummary(ctx, markerID)
	if err != nil {
		log.Error().Err(err).Str("marker_id", markerID).Msg("summary query failed")
		return nil, models.NewStorageError("failed to compute summary")
	}
	return sum, nil
}

// AllSummaries returns every marker's aggregate, most-scanned first.
func (s *AnalyticsService) AllSummaries(ctx context.Context) ([]models.AnalyticsSummary, error) {
	sums, err := s.store.GetAllAnalyticsSummaries(ctx)
	if err != nil {
		log.Error().Err(err).Msg("summaries query failed")
		return nil, models.NewStorageError("failed to compute summaries")
	}
	return sums, nil
}
