package models

import "time"

// Content types. The type decides which optional field is mandatory:
// video needs VideoURL, 3d needs ModelURL, news needs Title.
const (
	ContentTypeVideo = "video"
	ContentTypeNews  = "news"
	ContentType3D    = "3d"
	ContentTypeImage = "image"
)

// ContentStyle holds the overlay color scheme for a marker.
type ContentStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	AccentColor     string `json:"accentColor,omitempty"`
}

// Content is the record served to the AR client when a marker is scanned.
// There is at most one record per marker id.
type Content struct {
	MarkerID  string        `json:"markerId"`
	Type      string        `json:"type"`
	Title     string        `json:"title,omitempty"`
	Summary   string        `json:"summary,omitempty"`
	URL       string        `json:"url,omitempty"`
	VideoURL  string        `json:"videoUrl,omitempty"`
	PosterURL string        `json:"posterUrl,omitempty"`
	ModelURL  string        `json:"modelUrl,omitempty"`
	ImageURL  string        `json:"imageUrl,omitempty"`
	CTAText   string        `json:"ctaText,omitempty"`
	CTAURL    string        `json:"ctaUrl,omitempty"`
	Style     *ContentStyle `json:"style,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ContentInput is the upsert payload. The upsert is a full replace: fields
// omitted here end up absent on the stored record, never merged from the
// previous version.
type ContentInput struct {
	Type      string        `json:"type" binding:"required"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary"`
	URL       string        `json:"url"`
	VideoURL  string        `json:"videoUrl"`
	PosterURL string        `json:"posterUrl"`
	ModelURL  string        `json:"modelUrl"`
	ImageURL  string        `json:"imageUrl"`
	CTAText   string        `json:"ctaText"`
	CTAURL    string        `json:"ctaUrl"`
	Style     *ContentStyle `json:"style"`
	ExpiresAt *time.Time    `json:"expiresAt"`
}
