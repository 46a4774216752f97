// Package store defines the storage adapter contract and its implementations.
// Exactly one adapter is active per process, selected by configuration at
// startup; no code outside this package branches on backend identity.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"portalar/api/models"
)

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// DefaultEventLimit bounds event listings when the caller does not set one.
const DefaultEventLimit = 1000

// StorageError wraps a backend failure. The facade never retries; connection
// re-establishment is each adapter's own concern.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Query filters an event listing. Zero-value fields are ignored.
type Query struct {
	Start     *time.Time
	End       *time.Time
	EventType string
	Limit     int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultEventLimit
	}
	return q.Limit
}

// Store is the uniform capability set every backend implements. Adapters must
// be functionally interchangeable: the same input sequence yields the same
// logical summaries regardless of backend.
type Store interface {
	// Initialize establishes the connection and creates schema if absent.
	// A failure here is fatal; the process cannot serve traffic without it.
	Initialize(ctx context.Context) error
	// Close releases resources. Idempotent.
	Close() error
	// Name reports the backend identifier for the health endpoint.
	Name() string

	GetContent(ctx context.Context, markerID string) (*models.Content, error)
	// SetContent fully replaces the record: fields omitted in the input are
	// stored as absent, never merged from the previous version.
	SetContent(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error)
	DeleteContent(ctx context.Context, markerID string) (bool, error)
	// ListAllContent returns records most-recently-updated first.
	ListAllContent(ctx context.Context) ([]models.Content, error)

	RecordAnalyticsEvent(ctx context.Context, ev models.AnalyticsEvent) (*models.AnalyticsEvent, error)
	// GetAnalytics returns events timestamp-descending, bounded by q.Limit.
	GetAnalytics(ctx context.Context, markerID string, q Query) ([]models.AnalyticsEvent, error)
	// GetAnalyticsSummary returns a zeroed summary when the marker has no events.
	GetAnalyticsSummary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error)
	// GetAllAnalyticsSummaries returns summaries sorted by totalScans descending.
	GetAllAnalyticsSummaries(ctx context.Context) ([]models.AnalyticsSummary, error)
}

// contentFromInput applies the replace semantics shared by all adapters.
func contentFromInput(markerID string, in models.ContentInput, createdAt, updatedAt time.Time) models.Content {
	return models.Content{
		MarkerID:  markerID,
		Type:      in.Type,
		Title:     in.Title,
		Summary:   in.Summary,
		URL:       in.URL,
		VideoURL:  in.VideoURL,
		PosterURL: in.PosterURL,
		ModelURL:  in.ModelURL,
		ImageURL:  in.ImageURL,
		CTAText:   in.CTAText,
		CTAURL:    in.CTAURL,
		Style:     in.Style,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// summarize aggregates events in memory. Used by the adapters that do not
// push aggregation into a query engine.
func summarize(markerID string, events []models.AnalyticsEvent) models.AnalyticsSummary {
	s := models.AnalyticsSummary{MarkerID: markerID}
	var durationSum float64
	var durationCount uint64
	for _, ev := range events {
		switch ev.EventType {
		case models.EventTypeScan:
			s.TotalScans++
			if s.LastScan == nil || ev.Timestamp.After(*s.LastScan) {
				ts := ev.Timestamp
				s.LastScan = &ts
			}
		case models.EventTypeClick:
			s.TotalClicks++
		case models.EventTypeViewDuration:
			durationSum += ev.Duration
			durationCount++
		}
	}
	if durationCount > 0 {
		s.AvgDuration = durationSum / float64(durationCount)
	}
	return s
}

// matches reports whether an event passes the query filters.
func (q Query) matches(ev models.AnalyticsEvent) bool {
	if q.EventType != "" && ev.EventType != q.EventType {
		return false
	}
	if q.Start != nil && ev.Timestamp.Before(*q.Start) {
		return false
	}
	if q.End != nil && ev.Timestamp.After(*q.End) {
		return false
	}
	return true
}

func sortSummaries(summaries []models.AnalyticsSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalScans > summaries[j].TotalScans
	})
}
