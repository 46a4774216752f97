package models

// Summary is the result of summarizing an external URL. Mock is true when the
// result came from the deterministic offline fallback rather than the AI
// provider, so the admin UI can tell real from synthetic output.
type Summary struct {
	Headline string   `json:"headline"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	ReadTime string   `json:"readTime"`
	Source   string   `json:"source"`
	Mock     bool     `json:"mock"`
}

// SummarizeRequest asks for a summary of a URL without persisting anything.
type SummarizeRequest struct {
	URL       string `json:"url" binding:"required,url"`
	MaxLength int    `json:"maxLength"`
}

// SummarizeAndSaveRequest summarizes a URL and stores the result as a news
// content record for the given marker.
type SummarizeAndSaveRequest struct {
	MarkerID  string `json:"markerId" binding:"required"`
	URL       string `json:"url" binding:"required,url"`
	MaxLength int    `json:"maxLength"`
}
