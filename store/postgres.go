package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"portalar/api/database"
	"portalar/api/models"
)

// PostgresStore is the SQL adapter.
type PostgresStore struct {
	url string
	db  *sqlx.DB
}

func NewPostgresStore(url string) *PostgresStore {
	return &PostgresStore{url: url}
}

func (s *PostgresStore) Initialize(ctx context.Context) error {
	db, err := database.ConnectPostgres(s.url)
	if err != nil {
		return storageErr("initialize", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *PostgresStore) Name() string { return "postgres" }

const pgContentCols = `marker_id, content_type, title, summary, url, video_url, poster_url,
	model_url, image_url, cta_text, cta_url, style, expires_at, created_at, updated_at`

func (s *PostgresStore) GetContent(ctx context.Context, markerID string) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pgContentCols+` FROM content WHERE marker_id = $1`, markerID)
	c, err := scanPostgresContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get content", err)
	}
	return c, nil
}

func (s *PostgresStore) SetContent(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error) {
	now := time.Now().UTC()

	var style any
	if in.Style != nil {
		b, err := json.Marshal(in.Style)
		if err != nil {
			return nil, storageErr("set content", err)
		}
		style = b
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content (`+pgContentCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (marker_id) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			url = EXCLUDED.url,
			video_url = EXCLUDED.video_url,
			poster_url = EXCLUDED.poster_url,
			model_url = EXCLUDED.model_url,
			image_url = EXCLUDED.image_url,
			cta_text = EXCLUDED.cta_text,
			cta_url = EXCLUDED.cta_url,
			style = EXCLUDED.style,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`,
		markerID, in.Type, in.Title, in.Summary, in.URL, in.VideoURL, in.PosterURL,
		in.ModelURL, in.ImageURL, in.CTAText, in.CTAURL, style, in.ExpiresAt, now, now)
	if err != nil {
		return nil, storageErr("set content", err)
	}

	return s.GetContent(ctx, markerID)
}

func (s *PostgresStore) DeleteContent(ctx context.Context, markerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE marker_id = $1`, markerID)
	if err != nil {
		return false, storageErr("delete content", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("delete content", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) ListAllContent(ctx context.Context) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pgContentCols+` FROM content ORDER BY updated_at DESC`)
	if err != nil {
		return nil, storageErr("list content", err)
	}
	defer rows.Close()

	var out []models.Content
	for rows.Next() {
		c, err := scanPostgresContent(rows)
		if err != nil {
			return nil, storageErr("list content", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list content", err)
	}
	return out, nil
}

func (s *PostgresStore) RecordAnalyticsEvent(ctx context.Context, ev models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	var metadata any
	if len(ev.Metadata) > 0 {
		metadata = []byte(ev.Metadata)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (event_id, marker_id, event_type, session_id,
			timestamp, duration, user_agent, ip_address, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ev.EventID, ev.MarkerID, ev.EventType, ev.SessionID,
		ev.Timestamp, ev.Duration, ev.UserAgent, ev.IPAddress, metadata)
	if err != nil {
		return nil, storageErr("record event", err)
	}
	return &ev, nil
}

func (s *PostgresStore) GetAnalytics(ctx context.Context, markerID string, q Query) ([]models.AnalyticsEvent, error) {
	query := `SELECT event_id, marker_id, event_type, session_id, timestamp, duration,
		user_agent, ip_address, metadata FROM analytics_events WHERE marker_id = $1`
	args := []any{markerID}

	if q.EventType != "" {
		args = append(args, q.EventType)
		query += fmt.Sprintf(` AND event_type = $%d`, len(args))
	}
	if q.Start != nil {
		args = append(args, *q.Start)
		query += fmt.Sprintf(` AND timestamp >= $%d`, len(args))
	}
	if q.End != nil {
		args = append(args, *q.End)
		query += fmt.Sprintf(` AND timestamp <= $%d`, len(args))
	}
	args = append(args, q.limit())
	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get analytics", err)
	}
	defer rows.Close()

	var out []models.AnalyticsEvent
	for rows.Next() {
		var ev models.AnalyticsEvent
		var metadata []byte
		if err := rows.Scan(&ev.EventID, &ev.MarkerID, &ev.EventType, &ev.SessionID,
			&ev.Timestamp, &ev.Duration, &ev.UserAgent, &ev.IPAddress, &metadata); err != nil {
			return nil, storageErr("get analytics", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		if len(metadata) > 0 {
			ev.Metadata = json.RawMessage(metadata)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get analytics", err)
	}
	return out, nil
}

const pgSummaryCols = `
	COUNT(*) FILTER (WHERE event_type = 'scan'),
	COUNT(*) FILTER (WHERE event_type = 'click'),
	COALESCE(AVG(duration) FILTER (WHERE event_type = 'viewDuration'), 0),
	MAX(timestamp) FILTER (WHERE event_type = 'scan')`

func (s *PostgresStore) GetAnalyticsSummary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error) {
	sum := models.AnalyticsSummary{MarkerID: markerID}
	var lastScan sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT`+pgSummaryCols+` FROM analytics_events WHERE marker_id = $1`, markerID).
		Scan(&sum.TotalScans, &sum.TotalClicks, &sum.AvgDuration, &lastScan)
	if err != nil {
		return nil, storageErr("get summary", err)
	}
	if lastScan.Valid {
		t := lastScan.Time.UTC()
		sum.LastScan = &t
	}
	return &sum, nil
}

func (s *PostgresStore) GetAllAnalyticsSummaries(ctx context.Context) ([]models.AnalyticsSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT marker_id,`+pgSummaryCols+`
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
		var lastScan sql.NullTime
		if err := rows.Scan(&sum.MarkerID, &sum.TotalScans, &sum.TotalClicks,
			&sum.AvgDuration, &lastScan); err != nil {
			return nil, storageErr("get all summaries", err)
		}
		if lastScan.Valid {
			t := lastScan.Time.UTC()
			sum.LastScan = &t
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get all summaries", err)
	}
	return out, nil
}

func scanPostgresContent(sc interface{ Scan(dest ...any) error }) (*models.Content, error) {
	var c models.Content
	var style []byte
	var expiresAt sql.NullTime
	if err := sc.Scan(&c.MarkerID, &c.Type, &c.Title, &c.Summary, &c.URL, &c.VideoURL,
		&c.PosterURL, &c.ModelURL, &c.ImageURL, &c.CTAText, &c.CTAURL,
		&style, &expiresAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(style) > 0 {
		var st models.ContentStyle
		if err := json.Unmarshal(style, &st); err != nil {
			return nil, err
		}
		c.Style = &st
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		c.ExpiresAt = &t
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
