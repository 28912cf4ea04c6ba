package domain

import "fmt"

const unknownDescription = "Unknown"

// Ingestion defaults.
const (
	// DefaultSimilarityThreshold is the name similarity above which two
	// filenames are reported as near-duplicates.
	DefaultSimilarityThreshold = 0.8

	// DefaultMaxChunkSize is the default chunk size in characters.
	DefaultMaxChunkSize = 1000

	// DefaultWorkers is the default number of files ingested concurrently in a batch.
	DefaultWorkers = 4

	// DefaultIndexerRPS is the default sustained request rate to the vector indexer.
	DefaultIndexerRPS = 5.0

	// DefaultIndexerBurst is the default request burst to the vector indexer.
	DefaultIndexerBurst = 10
)

// StoreBackend identifies the document store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendMemory keeps documents in process memory.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendSQLite persists documents in a local SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendPostgres persists documents in PostgreSQL.
	StoreBackendPostgres StoreBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendSQLite, StoreBackendPostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendMemory:
		return "Memory (not persisted)"
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendPostgres:
		return "PostgreSQL (server)"
	default:
		return unknownDescription
	}
}

// StoreSettings selects and configures the document store.
type StoreSettings struct {
	// Backend is the store implementation.
	Backend StoreBackend

	// DataDir is the SQLite data directory. Empty means ~/.intake/data.
	DataDir string

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string
}

// DuplicateSettings tunes duplicate detection.
type DuplicateSettings struct {
	// SimilarityThreshold is the exclusive lower bound for near-duplicate names.
	SimilarityThreshold float64

	// Prefilter skips candidates whose name lengths make the threshold unreachable.
	Prefilter bool
}

// ChunkerSettings tunes text chunking.
type ChunkerSettings struct {
	// MaxChunkSize is the maximum chunk length in characters.
	MaxChunkSize int
}

// IngestSettings tunes batch ingestion.
type IngestSettings struct {
	// Workers bounds concurrent files per batch.
	Workers int
}

// IndexerSettings configures the remote vector indexer.
type IndexerSettings struct {
	// URL is the indexer base URL. Empty disables remote indexing.
	URL string

	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the maximum request burst.
	Burst int
}

// IsConfigured returns true if a remote indexer is set up.
func (i IndexerSettings) IsConfigured() bool {
	return i.URL != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Store      StoreSettings
	Duplicates DuplicateSettings
	Chunker    ChunkerSettings
	Ingest     IngestSettings
	Indexer    IndexerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The remote indexer is left unconfigured; chunks are indexed in memory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Duplicates: DuplicateSettings{
			SimilarityThreshold: DefaultSimilarityThreshold,
			Prefilter:           true,
		},
		Chunker: ChunkerSettings{
			MaxChunkSize: DefaultMaxChunkSize,
		},
		Ingest: IngestSettings{
			Workers: DefaultWorkers,
		},
		Indexer: IndexerSettings{
			RequestsPerSecond: DefaultIndexerRPS,
			Burst:             DefaultIndexerBurst,
		},
	}
}

// Validate checks the settings for values the services cannot work with.
func (s *AppSettings) Validate() error {
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidInput, s.Store.Backend)
	}
	if s.Store.Backend == StoreBackendPostgres && s.Store.PostgresURL == "" {
		return fmt.Errorf("%w: postgres backend requires a connection url", ErrInvalidInput)
	}
	if s.Duplicates.SimilarityThreshold < 0 || s.Duplicates.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %.2f outside [0, 1]",
			ErrInvalidInput, s.Duplicates.SimilarityThreshold)
	}
	if s.Chunker.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive", ErrInvalidInput)
	}
	if s.Ingest.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidInput)
	}
	if s.Indexer.IsConfigured() && (s.Indexer.RequestsPerSecond <= 0 || s.Indexer.Burst <= 0) {
		return fmt.Errorf("%w: indexer rate limit must be positive", ErrInvalidInput)
	}
	return nil
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultMaxChunkSize,
			},
		},
	}
}
