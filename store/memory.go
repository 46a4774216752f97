package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"portalar/api/models"
)

// MemoryStore is a map-backed adapter. It backs the service and handler tests
// and doubles as a throwaway dev backend.
type MemoryStore struct {
	mu      sync.RWMutex
	content map[string]models.Content
	events  []models.AnalyticsEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{content: make(map[string]models.Content)}
}

func (s *MemoryStore) Initialize(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) GetContent(ctx context.Context, markerID string) (*models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.content[markerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) SetContent(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	createdAt := now
	if prev, ok := s.content[markerID]; ok {
		createdAt = prev.CreatedAt
	}
	c := contentFromInput(markerID, in, createdAt, now)
	s.content[markerID] = c
	return &c, nil
}

func (s *MemoryStore) DeleteContent(ctx context.Context, markerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[markerID]; !ok {
		return false, nil
	}
	delete(s.content, markerID)
	return true, nil
}

func (s *MemoryStore) ListAllContent(ctx context.Context) ([]models.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Content, 0, len(s.content))
	for _, c := range s.content {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) RecordAnalyticsEvent(ctx context.Context, ev models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return &ev, nil
}

func (s *MemoryStore) GetAnalytics(ctx context.Context, markerID string, q Query) ([]models.AnalyticsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AnalyticsEvent
	for _, ev := range s.events {
		if ev.MarkerID == markerID && q.matches(ev) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > q.limit() {
		out = out[:q.limit()]
	}
	return out, nil
}

func (s *MemoryStore) GetAnalyticsSummary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []models.AnalyticsEvent
	for _, ev := range s.events {
		if ev.MarkerID == markerID {
			events = append(events, ev)
		}
	}
	sum := summarize(markerID, events)
	return &sum, nil
}

func (s *MemoryStore) GetAllAnalyticsSummaries(ctx context.Context) ([]models.AnalyticsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byMarker := make(map[string][]models.AnalyticsEvent)
	for _, ev := range s.events {
		byMarker[ev.MarkerID] = append(byMarker[ev.MarkerID], ev)
	}
	out := make([]models.AnalyticsSummary, 0, len(byMarker))
	for markerID, events := range byMarker {
		out = append(out, summarize(markerID, events))
	}
	sortSummaries(out)
	return out, nil
}
