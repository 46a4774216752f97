package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without an API key the summarizer must degrade to the deterministic mock,
// never error.
func TestSummarizeWithoutKeyUsesMock(t *testing.T) {
	s := NewSummarizer("", false)

	sum := s.Summarize(context.Background(), "https://www.example.com/story", 200)
	require.NotNil(t, sum)
	assert.True(t, sum.Mock)
	assert.Equal(t, "www.example.com", sum.Source)
	assert.Equal(t, "Latest updates from example", sum.Headline)
	assert.Equal(t, []string{"example", "news", "update"}, sum.Keywords)
	assert.LessOrEqual(t, len(sum.Summary), 200)

	again := s.Summarize(context.Background(), "https://www.example.com/story", 200)
	assert.Equal(t, sum, again, "mock output is deterministic")
}

func TestSummarizeMockModeIgnoresKey(t *testing.T) {
	s := NewSummarizer("real-key", true)

	sum := s.Summarize(context.Background(), "https://news.site.org/a", 0)
	assert.True(t, sum.Mock)
}

func TestParseSummaryPayload(t *testing.T) {
	raw := "```json\n{\"headline\":\"H\",\"summary\":\"S\",\"keywords\":[\"k\"],\"readTime\":\"3 min\"}\n```"
	p, err := parseSummaryPayload(raw)
	require.NoError(t, err)
	assert.Equal(t, "H", p.Headline)
	assert.Equal(t, "S", p.Summary)
	assert.Equal(t, "3 min", p.ReadTime)

	_, err = parseSummaryPayload("not json at all")
	assert.Error(t, err)

	_, err = parseSummaryPayload("{}")
	assert.Error(t, err, "empty payload is rejected")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
