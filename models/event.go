package models

import (
	"encoding/json"
	"time"
)

// Engagement event types accepted by the analytics endpoints.
const (
	EventTypeScan         = "scan"
	EventTypeViewDuration = "viewDuration"
	EventTypeClick        = "click"
	EventTypeShare        = "share"
)

// AnalyticsEvent represents a single engagement signal. Events are append-only:
// they are never mutated or deleted once recorded.
type AnalyticsEvent struct {
	EventID   string          `json:"eventId"`
	MarkerID  string          `json:"markerId"`
	EventType string          `json:"eventType"`
	SessionID string          `json:"sessionId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Duration  float64         `json:"duration,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`
	IPAddress string          `json:"ipAddress,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// EventInput is the ingest payload. UserAgent and IPAddress are stamped
// server-side; Timestamp defaults to server time when omitted.
type EventInput struct {
	MarkerID  string          `json:"markerId" binding:"required"`
	EventType string          `json:"eventType" binding:"required"`
	SessionID string          `json:"sessionId"`
	Timestamp *time.Time      `json:"timestamp"`
	Duration  float64         `json:"duration"`
	Metadata  json.RawMessage `json:"metadata"`
}

// BatchEventInput wraps 1-100 events ingested in one request.
type BatchEventInput struct {
	Events []EventInput `json:"events" binding:"required"`
}

// AnalyticsSummary is derived on demand from the event rows for one marker.
// LastScan is nil when the marker has never been scanned.
type AnalyticsSummary struct {
	MarkerID    string     `json:"markerId"`
	TotalScans  uint64     `json:"totalScans"`
	TotalClicks uint64     `json:"totalClicks"`
	AvgDuration float64    `json:"avgDuration"`
	LastScan    *time.Time `json:"lastScan"`
}
