package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"portalar/api/config"
	"portalar/api/database"
	"portalar/api/models"
)

// ClickHouseStore keeps both record kinds in append-only MergeTree tables.
// Content reads resolve the latest row per marker; deletes append a tombstone
// row instead of mutating, so reads stay deterministic without FINAL.
type ClickHouseStore struct {
	opts database.ClickHouseOptions
	conn clickhouse.Conn
}

func NewClickHouseStore(cfg *config.Config) *ClickHouseStore {
	return &ClickHouseStore{opts: database.ClickHouseOptions{
		Host:     cfg.ClickHouseHost,
		Port:     cfg.ClickHouseNativePort,
		Database: cfg.ClickHouseDBName,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	}}
}

const chContentDDL = `
	CREATE TABLE IF NOT EXISTS portal_content (
		marker_id    String,
		content_type String,
		title        String,
		summary      String,
		url          String,
		video_url    String,
		poster_url   String,
		model_url    String,
		image_url    String,
		cta_text     String,
		cta_url      String,
		style        String,
		expires_at   Int64,
		created_at   DateTime64(6, 'UTC'),
		updated_at   DateTime64(6, 'UTC'),
		deleted      UInt8
	) ENGINE = MergeTree ORDER BY (marker_id, updated_at)`

const chEventsDDL = `
	CREATE TABLE IF NOT EXISTS analytics_events (
		event_id   String,
		marker_id  String,
		event_type String,
		session_id String,
		timestamp  DateTime64(6, 'UTC'),
		duration   Float64,
		user_agent String,
		ip_address String,
		metadata   String
	) ENGINE = MergeTree ORDER BY (marker_id, timestamp)`

func (s *ClickHouseStore) Initialize(ctx context.Context) error {
	conn, err := database.ConnectClickHouse(s.opts)
	if err != nil {
		return storageErr("initialize", err)
	}
	if err := conn.Exec(ctx, chContentDDL); err != nil {
		return storageErr("initialize", err)
	}
	if err := conn.Exec(ctx, chEventsDDL); err != nil {
		return storageErr("initialize", err)
	}
	s.conn = conn
	return nil
}

func (s *ClickHouseStore) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *ClickHouseStore) Name() string { return "clickhouse" }

type chContentRow struct {
	markerID    string
	contentType string
	title       string
	summary     string
	url         string
	videoURL    string
	posterURL   string
	modelURL    string
	imageURL    string
	ctaText     string
	ctaURL      string
	style       string
	expiresAt   int64
	createdAt   time.Time
	updatedAt   time.Time
	deleted     uint8
}

func (r *chContentRow) toContent() *models.Content {
	c := models.Content{
		MarkerID:  r.markerID,
		Type:      r.contentType,
		Title:     r.title,
		Summary:   r.summary,
		URL:       r.url,
		VideoURL:  r.videoURL,
		PosterURL: r.posterURL,
		ModelURL:  r.modelURL,
		ImageURL:  r.imageURL,
		CTAText:   r.ctaText,
		CTAURL:    r.ctaURL,
		CreatedAt: r.createdAt.UTC(),
		UpdatedAt: r.updatedAt.UTC(),
	}
	if r.style != "" {
		c.Style = decodeStyle(r.style)
	}
	if r.expiresAt > 0 {
		t := time.Unix(0, r.expiresAt).UTC()
		c.ExpiresAt = &t
	}
	return &c
}

func (s *ClickHouseStore) latestRow(ctx context.Context, markerID string) (*chContentRow, error) {
	var r chContentRow
	err := s.conn.QueryRow(ctx, `
		SELECT marker_id, content_type, title, summary, url, video_url, poster_url,
			model_url, image_url, cta_text, cta_url, style, expires_at,
			created_at, updated_at, deleted
		FROM portal_content
		WHERE marker_id = ?
		ORDER BY updated_at DESC
		LIMIT 1`, markerID).
		Scan(&r.markerID, &r.contentType, &r.title, &r.summary, &r.url, &r.videoURL,
			&r.posterURL, &r.modelURL, &r.imageURL, &r.ctaText, &r.ctaURL,
			&r.style, &r.expiresAt, &r.createdAt, &r.updatedAt, &r.deleted)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get content", err)
	}
	return &r, nil
}

func (s *ClickHouseStore) GetContent(ctx context.Context, markerID string) (*models.Content, error) {
	r, err := s.latestRow(ctx, markerID)
	if err != nil {
		return nil, err
	}
	if r.deleted != 0 {
		return nil, ErrNotFound
	}
	return r.toContent(), nil
}

func (s *ClickHouseStore) insertContentRow(ctx context.Context, c models.Content, deleted uint8) error {
	style := ""
	if c.Style != nil {
		style = encodeStyle(c.Style)
	}
	var expiresAt int64
	if c.ExpiresAt != nil {
		expiresAt = c.ExpiresAt.UnixNano()
	}
	return s.conn.Exec(ctx, `
		INSERT INTO portal_content (marker_id, content_type, title, summary, url,
			video_url, poster_url, model_url, image_url, cta_text, cta_url,
			style, expires_at, created_at, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.MarkerID, c.Type, c.Title, c.Summary, c.URL, c.VideoURL, c.PosterURL,
		c.ModelURL, c.ImageURL, c.CTAText, c.CTAURL, style, expiresAt,
		c.CreatedAt, c.UpdatedAt, deleted)
}

func (s *ClickHouseStore) SetContent(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error) {
	now := time.Now().UTC()
	createdAt := now
	if prev, err := s.GetContent(ctx, markerID); err == nil {
		createdAt = prev.CreatedAt
	} else if _, isStorage := err.(*StorageError); isStorage {
		return nil, err
	}

	c := contentFromInput(markerID, in, createdAt, now)
	if err := s.insertContentRow(ctx, c, 0); err != nil {
		return nil, storageErr("set content", err)
	}
	return &c, nil
}

func (s *ClickHouseStore) DeleteContent(ctx context.Context, markerID string) (bool, error) {
	prev, err := s.GetContent(ctx, markerID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	tomb := *prev
	tomb.UpdatedAt = time.Now().UTC()
	if err := s.insertContentRow(ctx, tomb, 1); err != nil {
		return false, storageErr("delete content", err)
	}
	return true, nil
}

func (s *ClickHouseStore) ListAllContent(ctx context.Context) ([]models.Content, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT
			marker_id,
			argMax(content_type, updated_at) AS content_type,
			argMax(title, updated_at) AS title,
			argMax(summary, updated_at) AS summary,
			argMax(url, updated_at) AS url,
			argMax(video_url, updated_at) AS video_url,
			argMax(poster_url, updated_at) AS poster_url,
			argMax(model_url, updated_at) AS model_url,
			argMax(image_url, updated_at) AS image_url,
			argMax(cta_text, updated_at) AS cta_text,
			argMax(cta_url, updated_at) AS cta_url,
			argMax(style, updated_at) AS style,
			argMax(expires_at, updated_at) AS expires_at,
			min(created_at) AS created_at,
			max(updated_at) AS last_updated,
			argMax(deleted, updated_at) AS is_deleted
		FROM portal_content
		GROUP BY marker_id
		HAVING is_deleted = 0
		ORDER BY last_updated DESC`)
	if err != nil {
		return nil, storageErr("list content", err)
	}
	defer rows.Close()

	var out []models.Content
	for rows.Next() {
		var r chContentRow
		if err := rows.Scan(&r.markerID, &r.contentType, &r.title, &r.summary, &r.url,
			&r.videoURL, &r.posterURL, &r.modelURL, &r.imageURL, &r.ctaText, &r.ctaURL,
			&r.style, &r.expiresAt, &r.createdAt, &r.updatedAt, &r.deleted); err != nil {
			return nil, storageErr("list content", err)
		}
		out = append(out, *r.toContent())
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list content", err)
	}
	return out, nil
}

func (s *ClickHouseStore) RecordAnalyticsEvent(ctx context.Context, ev models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (event_id, marker_id, event_type, session_id,
			timestamp, duration, user_agent, ip_address, metadata)`)
	if err != nil {
		return nil, storageErr("record event", err)
	}
	if err := batch.Append(ev.EventID, ev.MarkerID, ev.EventType, ev.SessionID,
		ev.Timestamp, ev.Duration, ev.UserAgent, ev.IPAddress, string(ev.Metadata)); err != nil {
		return nil, storageErr("record event", err)
	}
	if err := batch.Send(); err != nil {
		return nil, storageErr("record event", err)
	}
	return &ev, nil
}

func (s *ClickHouseStore) GetAnalytics(ctx context.Context, markerID string, q Query) ([]models.AnalyticsEvent, error) {
	query := `SELECT event_id, marker_id, event_type, session_id, timestamp, duration,
		user_agent, ip_address, metadata FROM analytics_events WHERE marker_id = ?`
	args := []any{markerID}

	if q.EventType != "" {
		query += ` AND event_type = ?`
		args = append(args, q.EventType)
	}
	if q.Start != nil {
		query += ` AND timestamp >= ?`
		args = append(args, *q.Start)
	}
	if q.End != nil {
		query += ` AND timestamp <= ?`
		args = append(args, *q.End)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, q.limit())

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get analytics", err)
	}
	defer rows.Close()

	var out []models.AnalyticsEvent
	for rows.Next() {
		var ev models.AnalyticsEvent
		var metadata string
		if err := rows.Scan(&ev.EventID, &ev.MarkerID, &ev.EventType, &ev.SessionID,
			&ev.Timestamp, &ev.Duration, &ev.UserAgent, &ev.IPAddress, &metadata); err != nil {
			return nil, storageErr("get analytics", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		if metadata != "" {
			ev.Metadata = []byte(metadata)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get analytics", err)
	}
	return out, nil
}

const chSummaryCols = `
	countIf(event_type = 'scan'),
	countIf(event_type = 'click'),
	avgIf(duration, event_type = 'viewDuration'),
	maxIf(timestamp, event_type = 'scan')`

func (s *ClickHouseStore) GetAnalyticsSummary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error) {
	sum := models.AnalyticsSummary{MarkerID: markerID}
	var lastScan time.Time
	err := s.conn.QueryRow(ctx,
		`SELECT`+chSummaryCols+` FROM analytics_events WHERE marker_id = ?`, markerID).
		Scan(&sum.TotalScans, &sum.TotalClicks, &sum.AvgDuration, &lastScan)
	if err != nil {
		return nil, storageErr("get summary", err)
	}
	normalizeCHSummary(&sum, lastScan)
	return &sum, nil
}

func (s *ClickHouseStore) GetAllAnalyticsSummaries(ctx context.Context) ([]models.AnalyticsSummary, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT marker_id,`+chSummaryCols+`
		FROM analytics_events
		GROUP BY marker_id
		ORDER BY 2 DESC`)
	if err != nil {
		return nil, storageErr("get all summaries", err)
	}
	defer rows.Close()

	var out []models.AnalyticsSummary
	for rows.Next() {
		var sum models.AnalyticsSummary
		var lastScan time.Time
		if err := rows.Scan(&sum.MarkerID, &sum.TotalScans, &sum.TotalClicks,
			&sum.AvgDuration, &lastScan); err != nil {
			return nil, storageErr("get all summaries", err)
		}
		normalizeCHSummary(&sum, lastScan)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get all summaries", err)
	}
	return out, nil
}

// normalizeCHSummary cleans up aggregate artifacts: avgIf yields NaN over an
// empty set and maxIf yields the epoch.
func normalizeCHSummary(sum *models.AnalyticsSummary, lastScan time.Time) {
	if math.IsNaN(sum.AvgDuration) {
		sum.AvgDuration = 0
	}
	if lastScan.Unix() > 0 {
		t := lastScan.UTC()
		sum.LastScan = &t
	}
}

func encodeStyle(st *models.ContentStyle) string {
	b, err := json.Marshal(st)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeStyle(raw string) *models.ContentStyle {
	var st models.ContentStyle
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil
	}
	return &st
}

func isNoRows(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no rows in result set")
}
