package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"portalar/api/database"
	"portalar/api/models"
)

// Key layout for the document-style adapter: one JSON document per content
// record, a sorted-set index scored by updatedAt for the list ordering, and
// one JSON list per marker for its events.
const (
	redisContentPrefix = "content:"
	redisContentIndex  = "content:index"
	redisEventsPrefix  = "events:"
	redisEventMarkers  = "events:markers"
)

// RedisStore fills the document-store slot.
type RedisStore struct {
	addr     string
	password string
	db       int
	client   *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{addr: addr, password: password, db: db}
}

func (s *RedisStore) Initialize(ctx context.Context) error {
	client, err := database.ConnectRedis(s.addr, s.password, s.db)
	if err != nil {
		return storageErr("initialize", err)
	}
	s.client = client
	return nil
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) GetContent(ctx context.Context, markerID string) (*models.Content, error) {
	raw, err := s.client.Get(ctx, redisContentPrefix+markerID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get content", err)
	}
	var c models.Content
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, storageErr("get content", err)
	}
	return &c, nil
}

func (s *RedisStore) SetContent(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error) {
	now := time.Now().UTC()
	createdAt := now
	if prev, err := s.GetContent(ctx, markerID); err == nil {
		createdAt = prev.CreatedAt
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c := contentFromInput(markerID, in, createdAt, now)
	doc, err := json.Marshal(c)
	if err != nil {
		return nil, storageErr("set content", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisContentPrefix+markerID, doc, 0)
	pipe.ZAdd(ctx, redisContentIndex, redis.Z{Score: float64(now.UnixNano()), Member: markerID})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storageErr("set content", err)
	}
	return &c, nil
}

func (s *RedisStore) DeleteContent(ctx context.Context, markerID string) (bool, error) {
	deleted, err := s.client.Del(ctx, redisContentPrefix+markerID).Result()
	if err != nil {
		return false, storageErr("delete content", err)
	}
	if err := s.client.ZRem(ctx, redisContentIndex, markerID).Err(); err != nil {
		return false, storageErr("delete content", err)
	}
	return deleted > 0, nil
}

func (s *RedisStore) ListAllContent(ctx context.Context) ([]models.Content, error) {
	ids, err := s.client.ZRevRange(ctx, redisContentIndex, 0, -1).Result()
	if err != nil {
		return nil, storageErr("list content", err)
	}
	out := make([]models.Content, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetContent(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *RedisStore) RecordAnalyticsEvent(ctx context.Context, ev models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	doc, err := json.Marshal(ev)
	if err != nil {
		return nil, storageErr("record event", err)
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, redisEventsPrefix+ev.MarkerID, doc)
	pipe.SAdd(ctx, redisEventMarkers, ev.MarkerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storageErr("record event", err)
	}
	return &ev, nil
}

func (s *RedisStore) eventsFor(ctx context.Context, markerID string) ([]models.AnalyticsEvent, error) {
	raws, err := s.client.LRange(ctx, redisEventsPrefix+markerID, 0, -1).Result()
	if err != nil {
		return nil, storageErr("get analytics", err)
	}
	events := make([]models.AnalyticsEvent, 0, len(raws))
	for _, raw := range raws {
		var ev models.AnalyticsEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, storageErr("get analytics", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *RedisStore) GetAnalytics(ctx context.Context, markerID string, q Query) ([]models.AnalyticsEvent, error) {
	events, err := s.eventsFor(ctx, markerID)
	if err != nil {
		return nil, err
	}
	var out []models.AnalyticsEvent
	for _, ev := range events {
		if q.matches(ev) {
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

func (s *RedisStore) GetAnalyticsSummary(ctx context.Context, markerID string) (*models.AnalyticsSummary, error) {
	events, err := s.eventsFor(ctx, markerID)
	if err != nil {
		return nil, err
	}
	sum := summarize(markerID, events)
	return &sum, nil
}

func (s *RedisStore) GetAllAnalyticsSummaries(ctx context.Context) ([]models.AnalyticsSummary, error) {
	ids, err := s.client.SMembers(ctx, redisEventMarkers).Result()
	if err != nil {
		return nil, storageErr("get all summaries", err)
	}
	out := make([]models.AnalyticsSummary, 0, len(ids))
	for _, id := range ids {
		sum, err := s.GetAnalyticsSummary(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	sortSummaries(out)
	return out, nil
}
