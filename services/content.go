// Package services holds the business logic between the HTTP layer and the
// storage adapter.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"portalar/api/models"
	"portalar/api/store"
	"portalar/api/utils"
)

// ContentService validates and serves marker content. Every read hits
// storage: the dataset is one row per printed marker and admins can change
// content at any time, so freshness beats latency here.
type ContentService struct {
	store store.Store
}

func NewContentService(s store.Store) *ContentService {
	return &ContentService{store: s}
}

// Fetch returns the content for a marker. A record whose expiresAt is in the
// past yields an expired error (distinct from not found) carrying the stale
// expiry so callers can see when it lapsed.
func (s *ContentService) Fetch(ctx context.Context, markerID string) (*models.Content, error) {
	c, err := s.store.GetContent(ctx, markerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NewNotFoundError("no content for marker '" + markerID + "'")
	}
	if err != nil {
		log.Error().Err(err).Str("marker_id", markerID).Msg("content fetch failed")
		return nil, models.NewStorageError("failed to fetch content")
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now().UTC()) {
		return nil, models.NewExpiredError("content for marker '"+markerID+"' has expired",
			map[string]any{"expiresAt": c.ExpiresAt})
	}
	return c, nil
}

// Upsert fully replaces the record for a marker after validating the type and
// its type-specific required field.
func (s *ContentService) Upsert(ctx context.Context, markerID string, in models.ContentInput) (*models.Content, error) {
	if markerID == "" {
		return nil, models.NewValidationError("markerId is required")
	}
	if !utils.IsValidContentType(in.Type) {
		return nil, models.NewValidationError("invalid content type '" + in.Type + "'")
	}
	switch in.Type {
	case models.ContentTypeVideo:
		if in.VideoURL == "" {
			return nil, models.NewValidationError("videoUrl is required for video content")
		}
	case models.ContentType3D:
		if in.ModelURL == "" {
			return nil, models.NewValidationError("modelUrl is required for 3d content")
		}
	case models.ContentTypeNews:
		if in.Title == "" {
			return nil, models.NewValidationError("title is required for news content")
		}
	}

	c, err := s.store.SetContent(ctx, markerID, in)
	if err != nil {
		log.Error().Err(err).Str("marker_id", markerID).Msg("content upsert failed")
		return nil, models.NewStorageError("failed to store content")
	}
	return c, nil
}

// Remove deletes the record for a marker.
func (s *ContentService) Remove(ctx context.Context, markerID string) error {
	deleted, err := s.store.DeleteContent(ctx, markerID)
	if err != nil {
		log.Error().Err(err).Str("marker_id", markerID).Msg("content delete failed")
		return models.NewStorageError("failed to delete content")
	}
	if !deleted {
		return models.NewNotFoundError("no content for marker '" + markerID + "'")
	}
	return nil
}

// List returns all records, most-recently-updated first. Admin only.
func (s *ContentService) List(ctx context.Context) ([]models.Content, error) {
	all, err := s.store.ListAllContent(ctx)
	if err != nil {
		log.Error().Err(err).Msg("content list failed")
		return nil, models.NewStorageError("failed to list content")
	}
	return all, nil
}
