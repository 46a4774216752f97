package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalar/api/models"
)

// openStores returns every adapter that can run without external services.
// The same conformance suite runs against each: adapters must be
// interchangeable.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, sqlite.Initialize(context.Background()))
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func newEvent(markerID, eventType string, ts time.Time, duration float64) models.AnalyticsEvent {
	return models.AnalyticsEvent{
		EventID:   uuid.New().String(),
		MarkerID:  markerID,
		EventType: eventType,
		SessionID: "sess-1",
		Timestamp: ts,
		Duration:  duration,
		UserAgent: "test-agent",
		IPAddress: "203.0.113.7",
	}
}

func TestContentLifecycle(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.GetContent(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
			in := models.ContentInput{
				Type:     models.ContentTypeVideo,
				Title:    "Launch teaser",
				VideoURL: "https://cdn.example.com/teaser.mp4",
				CTAText:  "Watch now",
				CTAURL:   "https://example.com/launch",
				Style:    &models.ContentStyle{BackgroundColor: "#000", TextColor: "#fff"},
				ExpiresAt: &expires,
			}

			created, err := s.SetContent(ctx, "m-1", in)
			require.NoError(t, err)
			assert.Equal(t, "m-1", created.MarkerID)
			assert.Equal(t, models.ContentTypeVideo, created.Type)
			assert.False(t, created.CreatedAt.IsZero())

			got, err := s.GetContent(ctx, "m-1")
			require.NoError(t, err)
			assert.Equal(t, "Launch teaser", got.Title)
			assert.Equal(t, "https://cdn.example.com/teaser.mp4", got.VideoURL)
			require.NotNil(t, got.Style)
			assert.Equal(t, "#000", got.Style.BackgroundColor)
			require.NotNil(t, got.ExpiresAt)
			assert.WithinDuration(t, expires, got.ExpiresAt.UTC(), time.Second)
		})
	}
}

// An upsert is a full replace: fields absent from the new input must not
// survive from the previous version, but createdAt must.
func TestUpsertReplacesRecord(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := s.SetContent(ctx, "m-1", models.ContentInput{
				Type:     models.ContentTypeVideo,
				Title:    "Old title",
				VideoURL: "https://cdn.example.com/old.mp4",
				CTAText:  "Old CTA",
			})
			require.NoError(t, err)

			time.Sleep(10 * time.Millisecond)

			second, err := s.SetContent(ctx, "m-1", models.ContentInput{
				Type:  models.ContentTypeNews,
				Title: "New title",
				URL:   "https://example.com/article",
			})
			require.NoError(t, err)

			got, err := s.GetContent(ctx, "m-1")
			require.NoError(t, err)
			assert.Equal(t, models.ContentTypeNews, got.Type)
			assert.Equal(t, "New title", got.Title)
			assert.Empty(t, got.VideoURL, "replaced record must not keep old fields")
			assert.Empty(t, got.CTAText)
			assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Second)
			assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
		})
	}
}

func TestDeleteContent(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			deleted, err := s.DeleteContent(ctx, "never-existed")
			require.NoError(t, err)
			assert.False(t, deleted)

			_, err = s.SetContent(ctx, "m-1", models.ContentInput{Type: models.ContentTypeImage, ImageURL: "https://cdn.example.com/a.png"})
			require.NoError(t, err)

			deleted, err = s.DeleteContent(ctx, "m-1")
			require.NoError(t, err)
			assert.True(t, deleted)

			_, err = s.GetContent(ctx, "m-1")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListAllContentOrder(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, id := range []string{"m-1", "m-2", "m-3"} {
				_, err := s.SetContent(ctx, id, models.ContentInput{Type: models.ContentTypeImage, ImageURL: "https://cdn.example.com/" + id + ".png"})
				require.NoError(t, err)
				time.Sleep(10 * time.Millisecond)
			}
			// touch m-1 so it becomes the most recent
			_, err := s.SetContent(ctx, "m-1", models.ContentInput{Type: models.ContentTypeImage, ImageURL: "https://cdn.example.com/m-1-v2.png"})
			require.NoError(t, err)

			all, err := s.ListAllContent(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "m-1", all[0].MarkerID)
			assert.Equal(t, "m-3", all[1].MarkerID)
			assert.Equal(t, "m-2", all[2].MarkerID)
		})
	}
}

func TestGetAnalyticsFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				_, err := s.RecordAnalyticsEvent(ctx, newEvent("m-1", models.EventTypeScan, base.Add(time.Duration(i)*time.Minute), 0))
				require.NoError(t, err)
			}
			_, err := s.RecordAnalyticsEvent(ctx, newEvent("m-1", models.EventTypeClick, base.Add(10*time.Minute), 0))
			require.NoError(t, err)
			_, err = s.RecordAnalyticsEvent(ctx, newEvent("m-2", models.EventTypeScan, base, 0))
			require.NoError(t, err)

			all, err := s.GetAnalytics(ctx, "m-1", Query{})
			require.NoError(t, err)
			require.Len(t, all, 6)
			assert.Equal(t, models.EventTypeClick, all[0].EventType, "newest first")

			scans, err := s.GetAnalytics(ctx, "m-1", Query{EventType: models.EventTypeScan})
			require.NoError(t, err)
			assert.Len(t, scans, 5)

			start := base.Add(2 * time.Minute)
			end := base.Add(4 * time.Minute)
			ranged, err := s.GetAnalytics(ctx, "m-1", Query{Start: &start, End: &end})
			require.NoError(t, err)
			assert.Len(t, ranged, 3)

			limited, err := s.GetAnalytics(ctx, "m-1", Query{Limit: 2})
			require.NoError(t, err)
			assert.Len(t, limited, 2)
		})
	}
}

func TestAnalyticsSummary(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.GetAnalyticsSummary(ctx, "no-events")
			require.NoError(t, err)
			assert.Equal(t, uint64(0), empty.TotalScans)
			assert.Equal(t, uint64(0), empty.TotalClicks)
			assert.Zero(t, empty.AvgDuration)
			assert.Nil(t, empty.LastScan)

			lastScan := base.Add(30 * time.Minute)
			events := []models.AnalyticsEvent{
				newEvent("m-1", models.EventTypeScan, base, 0),
				newEvent("m-1", models.EventTypeScan, lastScan, 0),
				newEvent("m-1", models.EventTypeClick, base.Add(time.Minute), 0),
				newEvent("m-1", models.EventTypeViewDuration, base.Add(2*time.Minute), 10),
				newEvent("m-1", models.EventTypeViewDuration, base.Add(3*time.Minute), 30),
				newEvent("m-1", models.EventTypeShare, base.Add(4*time.Minute), 0),
			}
			for _, ev := range events {
				_, err := s.RecordAnalyticsEvent(ctx, ev)
				require.NoError(t, err)
			}

			sum, err := s.GetAnalyticsSummary(ctx, "m-1")
			require.NoError(t, err)
			assert.Equal(t, uint64(2), sum.TotalScans)
			assert.Equal(t, uint64(1), sum.TotalClicks)
			assert.InDelta(t, 20.0, sum.AvgDuration, 0.001)
			require.NotNil(t, sum.LastScan)
			assert.WithinDuration(t, lastScan, sum.LastScan.UTC(), time.Second)
		})
	}
}

func TestAllSummariesSortedByScans(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				_, err := s.RecordAnalyticsEvent(ctx, newEvent("busy", models.EventTypeScan, base.Add(time.Duration(i)*time.Minute), 0))
				require.NoError(t, err)
			}
			_, err := s.RecordAnalyticsEvent(ctx, newEvent("quiet", models.EventTypeScan, base, 0))
			require.NoError(t, err)

			sums, err := s.GetAllAnalyticsSummaries(ctx)
			require.NoError(t, err)
			require.Len(t, sums, 2)
			assert.Equal(t, "busy", sums[0].MarkerID)
			assert.Equal(t, uint64(3), sums[0].TotalScans)
			assert.Equal(t, "quiet", sums[1].MarkerID)
		})
	}
}
