package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreBackend_IsValid(t *testing.T) {
	tests := []struct {
		backend StoreBackend
		valid   bool
	}{
		{StoreBackendMemory, true},
		{StoreBackendSQLite, true},
		{StoreBackendPostgres, true},
		{StoreBackend("mongo"), false},
		{StoreBackend(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.backend.IsValid())
		})
	}
}

func TestStoreBackend_Description(t *testing.T) {
	assert.Equal(t, "SQLite (local file)", StoreBackendSQLite.Description())
	assert.Equal(t, unknownDescription, StoreBackend("x").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, StoreBackendSQLite, s.Store.Backend)
	assert.InDelta(t, 0.8, s.Duplicates.SimilarityThreshold, 1e-9)
	assert.True(t, s.Duplicates.Prefilter)
	assert.Equal(t, 1000, s.Chunker.MaxChunkSize)
	assert.Equal(t, DefaultWorkers, s.Ingest.Workers)
	assert.False(t, s.Indexer.IsConfigured())
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
	}{
		{"unknown backend", func(s *AppSettings) { s.Store.Backend = "mongo" }},
		{"postgres without url", func(s *AppSettings) { s.Store.Backend = StoreBackendPostgres }},
		{"threshold above one", func(s *AppSettings) { s.Duplicates.SimilarityThreshold = 1.5 }},
		{"negative threshold", func(s *AppSettings) { s.Duplicates.SimilarityThreshold = -0.1 }},
		{"zero chunk size", func(s *AppSettings) { s.Chunker.MaxChunkSize = 0 }},
		{"zero workers", func(s *AppSettings) { s.Ingest.Workers = 0 }},
		{"indexer without rate", func(s *AppSettings) {
			s.Indexer.URL = "http://localhost:9000"
			s.Indexer.RequestsPerSecond = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			err := s.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	assert.Equal(t, []string{"chunker"}, cfg.Processors)
	assert.Equal(t, DefaultMaxChunkSize, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Nil(t, cfg.GetProcessorConfig("missing"))

	empty := PipelineConfig{}
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
