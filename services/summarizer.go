package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"portalar/api/models"
)

const (
	perplexityBaseURL = "https://api.perplexity.ai"
	perplexityModel   = "sonar"

	defaultSummaryLength = 400
)

// Summarizer wraps the Perplexity API. Every failure path (no key, mock mode,
// timeout, HTTP error, unparsable body) degrades to a deterministic offline
// summary flagged mock:true; callers never see an error.
type Summarizer struct {
	client *resty.Client
	apiKey string
	mock   bool
}

func NewSummarizer(apiKey string, mockMode bool) *Summarizer {
	client := resty.New().
		SetBaseURL(perplexityBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Summarizer{client: client, apiKey: apiKey, mock: mockMode}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type summaryPayload struct {
	Headline string   `json:"headline"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	ReadTime string   `json:"readTime"`
}

// Summarize returns a headline/summary/keywords triple for the page at rawURL.
func (s *Summarizer) Summarize(ctx context.Context, rawURL string, maxLength int) *models.Summary {
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}
	if s.mock || s.apiKey == "" {
		return s.mockSummary(rawURL, maxLength)
	}

	req := chatRequest{
		Model: perplexityModel,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: "You summarize web articles. Respond with strict JSON only: " +
					`{"headline": string, "summary": string, "keywords": [string], "readTime": string}`,
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Summarize the page at %s in at most %d characters.", rawURL, maxLength),
			},
		},
	}

	var body chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetBody(req).
		SetResult(&body).
		Post("/chat/completions")
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("summarization call failed, using mock")
		return s.mockSummary(rawURL, maxLength)
	}
	if resp.IsError() || len(body.Choices) == 0 {
		log.Warn().Int("status", resp.StatusCode()).Str("url", rawURL).
			Msg("summarization returned error, using mock")
		return s.mockSummary(rawURL, maxLength)
	}

	payload, err := parseSummaryPayload(body.Choices[0].Message.Content)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("unparsable summarization response, using mock")
		return s.mockSummary(rawURL, maxLength)
	}

	return &models.Summary{
		Headline: payload.Headline,
		Summary:  truncate(payload.Summary, maxLength),
		Keywords: payload.Keywords,
		ReadTime: payload.ReadTime,
		Source:   hostOf(rawURL),
		Mock:     false,
	}
}

// parseSummaryPayload tolerates models that wrap their JSON in code fences.
func parseSummaryPayload(content string) (*summaryPayload, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var payload summaryPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		return nil, err
	}
	if payload.Headline == "" && payload.Summary == "" {
		return nil, fmt.Errorf("empty summary payload")
	}
	return &payload, nil
}

// mockSummary derives a stable placeholder from the URL's domain.
func (s *Summarizer) mockSummary(rawURL string, maxLength int) *models.Summary {
	host := hostOf(rawURL)
	domain := strings.TrimPrefix(host, "www.")
	name := domain
	if i := strings.Index(domain, "."); i > 0 {
		name = domain[:i]
	}
	if name == "" {
		name = "the web"
	}

	return &models.Summary{
		Headline: fmt.Sprintf("Latest updates from %s", name),
		Summary: truncate(fmt.Sprintf(
			"A quick overview of recent coverage published on %s. Scan the marker again later for fresh content.",
			domain), maxLength),
		Keywords: []string{name, "news", "update"},
		ReadTime: "2 min",
		Source:   host,
		Mock:     true,
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
