package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalar/api/config"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		name    string
	}{
		{"memory", "memory"},
		{"sqlite", "sqlite"},
		{"postgres", "postgres"},
		{"redis", "redis"},
		{"clickhouse", "clickhouse"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := New(&config.Config{StorageBackend: tt.backend})
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name())
		})
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(&config.Config{StorageBackend: "etcd"})
	assert.Error(t, err)
}
