package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalar/api/models"
	"portalar/api/store"
)

func apiErr(t *testing.T, err error) *models.APIError {
	t.Helper()
	var ae *models.APIError
	require.ErrorAs(t, err, &ae)
	return ae
}

func TestUpsertValidation(t *testing.T) {
	svc := NewContentService(store.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		markerID string
		in       models.ContentInput
	}{
		{"empty marker id", "", models.ContentInput{Type: "image", ImageURL: "https://x/a.png"}},
		{"unknown type", "m-1", models.ContentInput{Type: "hologram"}},
		{"video without videoUrl", "m-1", models.ContentInput{Type: "video"}},
		{"3d without modelUrl", "m-1", models.ContentInput{Type: "3d"}},
		{"news without title", "m-1", models.ContentInput{Type: "news", URL: "https://x/article"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(ctx, tt.markerID, tt.in)
			ae := apiErr(t, err)
			assert.Equal(t, models.KindValidation, ae.Kind)
			assert.Equal(t, http.StatusBadRequest, ae.Status)
		})
	}
}

func TestFetchNotFound(t *testing.T) {
	svc := NewContentService(store.NewMemoryStore())

	_, err := svc.Fetch(context.Background(), "ghost")
	ae := apiErr(t, err)
	assert.Equal(t, models.KindNotFound, ae.Kind)
	assert.Equal(t, http.StatusNotFound, ae.Status)
}

// Expired content is a distinct failure from missing content and carries the
// stale expiry so the caller can show when it lapsed.
func TestFetchExpired(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewContentService(st)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour).UTC()
	_, err := svc.Upsert(ctx, "m-1", models.ContentInput{
		Type:      models.ContentTypeImage,
		ImageURL:  "https://cdn.example.com/poster.png",
		ExpiresAt: &past,
	})
	require.NoError(t, err)

	_, err = svc.Fetch(ctx, "m-1")
	ae := apiErr(t, err)
	assert.Equal(t, models.KindExpired, ae.Kind)
	assert.Equal(t, http.StatusGone, ae.Status)
	assert.Contains(t, ae.Meta, "expiresAt")
}

func TestFetchRoundtrip(t *testing.T) {
	svc := NewContentService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "m-1", models.ContentInput{
		Type:     models.ContentTypeVideo,
		Title:    "Trailer",
		VideoURL: "https://cdn.example.com/trailer.mp4",
	})
	require.NoError(t, err)

	got, err := svc.Fetch(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "Trailer", got.Title)
	assert.Equal(t, models.ContentTypeVideo, got.Type)
}

func TestRemove(t *testing.T) {
	svc := NewContentService(store.NewMemoryStore())
	ctx := context.Background()

	err := svc.Remove(ctx, "ghost")
	ae := apiErr(t, err)
	assert.Equal(t, models.KindNotFound, ae.Kind)

	_, err = svc.Upsert(ctx, "m-1", models.ContentInput{Type: models.ContentTypeImage, ImageURL: "https://x/a.png"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "m-1"))

	_, err = svc.Fetch(ctx, "m-1")
	assert.True(t, errors.As(err, new(*models.APIError)))
}
