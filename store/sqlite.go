package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"portalar/api/database"
	"portalar/api/models"
)

// SQLiteStore is the embedded relational adapter. Timestamps are stored as
// unix nanoseconds so ordering and range filters stay purely numeric.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	db, err := database.OpenSQLite(s.path)
	if err != nil {
		return storageErr("initialize", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Name() string { return "sqlite" }

const sqliteContentCols = `marker_id, content_type, title, summary, url, video_url, poster_url,
	model_url, image_url, cta_text, cta_url, style, expires_at, created_at, updated_at`

func (s *SQLiteStore) GetContent(ctx context.Context, markerID string) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteContentCols+` FROM content WHERE marker_id = ?`, markerID)
	c, err := scanSQLiteContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get content", err)
	}
	return c, nil
}

func (s *SQLiteStore) SetContent(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error) {
	now := time.Now().UTC()

	var style any
	if in.Style != nil {
		b, err := json.Marshal(in.Style)
		if err != nil {
			return nil, storageErr("set content", err)
		}
		style = string(b)
	}
	var expiresAt any
	if in.ExpiresAt != nil {
		expiresAt = in.ExpiresAt.UnixNano()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content (`+sqliteContentCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(marker_id) DO UPDATE SET
			content_type = excluded.content_type,
			title = excluded.title,
			summary = excluded.summary,
			url = excluded.url,
			video_url = excluded.video_url,
			poster_url = excluded.poster_url,
			model_url = excluded.model_url,
			image_url = excluded.image_url,
			cta_text = excluded.cta_text,
			cta_url = excluded.cta_url,
			style = excluded.style,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		markerID, in.Type, in.Title, in.Summary, in.URL, in.VideoURL, in.PosterURL,
		in.ModelURL, in.ImageURL, in.CTAText, in.CTAURL, style, expiresAt,
		now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, storageErr("set content", err)
	}

	return s.GetContent(ctx, markerID)
}

func (s *SQLiteStore) DeleteContent(ctx context.Context, markerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE marker_id = ?`, markerID)
	if err != nil {
		return false, storageErr("delete content", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("delete content", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListAllContent(ctx context.Context) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteContentCols+` FROM content ORDER BY updated_at DESC`)
	if err != nil {
		return nil, storageErr("list content", err)
	}
	defer rows.Close()

	var out []models.Content
	for rows.Next() {
		c, err := scanSQLiteContent(rows)
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

func (s *SQLiteStore) RecordAnalyticsEvent(ctx context.Context, ev models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	var metadata any
	if len(ev.Metadata) > 0 {
		metadata = string(ev.Metadata)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (event_id, marker_id, event_type, session_id,
			timestamp, duration, user_agent, ip_address, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.MarkerID, ev.EventType, ev.SessionID,
		ev.Timestamp.UnixNano(), ev.Duration, ev.UserAgent, ev.IPAddress, metadata)
	if err != nil {
		return nil, storageErr("record event", err)
	}
	return &ev, nil
}

func (s *SQLiteStore) GetAnalytics(ctx context.Context, markerID string, q Query) ([]models.AnalyticsEvent, error) {
	query := `SELECT event_id, marker_id, event_type, session_id, timestamp, duration,
		user_agent, ip_address, metadata FROM analytics_events WHERE marker_id = ?`
	args := []any{markerID}

	if q.EventType != "" {
		query += ` AND event_type = ?`
		args = append(args, q.EventType)
	}
	if q.Start != nil {
		query += ` AND timestamp >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if q.End != nil {
		query += ` AND timestamp <= ?`
		args = append(args, q.End.UnixNano())
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, q.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get analytics", err)
	}
	defer rows.Close()

	var out []models.AnalyticsEvent
	for rows.Next() {
		var ev models.AnalyticsEvent
		var ts int64
		var metadata sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.MarkerID, &ev.EventType, &ev.SessionID,
			&ts, &ev.Duration, &ev.UserAgent, &ev.IPAddress, &metadata); err != nil {
			return nil, storageErr("get analytics", err)
		}
		ev.Timestamp = time.Unix(0, ts).UTC()
		if metadata.Valid && metadata.String != "" {
			ev.Metadata = json.RawMessage(metadata.String)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get analytics", err)
	}
	return out, nil
}

const sqliteSummaryCols = `
	COUNT(CASE WHEN event_type = 'scan' THEN 1 END),
	COUNT(CASE WHEN event_type = 'click' THEN 1 END),
	COALESCE(AVG(CASE WHEN event_type = 'viewDuration' THEN duration END), 0),
	MAX(CASE WHEN event_type = 'scan' THEN timestamp END)`

func (s *SQLiteStore) GetAnalyticsSummary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error) {
	sum := models.AnalyticsSummary{MarkerID: markerID}
	var scans, clicks int64
	var lastScan sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT`+sqliteSummaryCols+` FROM analytics_events WHERE marker_id = ?`, markerID).
		Scan(&scans, &clicks, &sum.AvgDuration, &lastScan)
	if err != nil {
		return nil, storageErr("get summary", err)
	}
	sum.TotalScans = uint64(scans)
	sum.TotalClicks = uint64(clicks)
	if lastScan.Valid {
		t := time.Unix(0, lastScan.Int64).UTC()
		sum.LastScan = &t
	}
	return &sum, nil
}

func (s *SQLiteStore) GetAllAnalyticsSummaries(ctx context.Context) ([]models.AnalyticsSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT marker_id,`+sqliteSummaryCols+`
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
		var scans, clicks int64
		var lastScan sql.NullInt64
		if err := rows.Scan(&sum.MarkerID, &scans, &clicks, &sum.AvgDuration, &lastScan); err != nil {
			return nil, storageErr("get all summaries", err)
		}
		sum.TotalScans = uint64(scans)
		sum.TotalClicks = uint64(clicks)
		if lastScan.Valid {
			t := time.Unix(0, lastScan.Int64).UTC()
			sum.LastScan = &t
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get all summaries", err)
	}
	return out, nil
}

func scanSQLiteContent(sc interface{ Scan(dest ...any) error }) (*models.Content, error) {
	var c models.Content
	var style sql.NullString
	var expiresAt sql.NullInt64
	var createdAt, updatedAt int64
	if err := sc.Scan(&c.MarkerID, &c.Type, &c.Title, &c.Summary, &c.URL, &c.VideoURL,
		&c.PosterURL, &c.ModelURL, &c.ImageURL, &c.CTAText, &c.CTAURL,
		&style, &expiresAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if style.Valid && style.String != "" {
		var st models.ContentStyle
		if err := json.Unmarshal([]byte(style.String), &st); err != nil {
			return nil, err
		}
		c.Style = &st
	}
	if expiresAt.Valid {
		t := time.Unix(0, expiresAt.Int64).UTC()
		c.ExpiresAt = &t
	}
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	c.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &c, nil
}
