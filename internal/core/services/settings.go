package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyStoreBackend        = "store.backend"
	KeyStoreDataDir        = "store.data_dir"
	KeyStorePostgresURL    = "store.postgres_url"
	KeySimilarityThreshold = "duplicates.similarity_threshold"
	KeyPrefilter           = "duplicates.prefilter"
	KeyMaxChunkSize        = "chunker.max_chunk_size"
	KeyWorkers             = "ingest.workers"
	KeyIndexerURL          = "indexer.url"
	KeyIndexerRPS          = "indexer.requests_per_second"
	KeyIndexerBurst        = "indexer.burst"
)

// Environment variables that override the config file.
const (
	EnvPostgresURL = "INTAKE_POSTGRES_URL"
	EnvIndexerURL  = "INTAKE_INDEXER_URL"
	EnvDataDir     = "INTAKE_DATA_DIR"
	EnvStore       = "INTAKE_STORE"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{KeyStoreBackend, kindString},
	{KeyStoreDataDir, kindString},
	{KeyStorePostgresURL, kindString},
	{KeySimilarityThreshold, kindFloat},
	{KeyPrefilter, kindBool},
	{KeyMaxChunkSize, kindInt},
	{KeyWorkers, kindInt},
	{KeyIndexerURL, kindString},
	{KeyIndexerRPS, kindFloat},
	{KeyIndexerBurst, kindInt},
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithLookupEnv replaces os.LookupEnv. Used by tests.
func WithLookupEnv(fn func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) {
		if fn != nil {
			s.lookupEnv = fn
		}
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings and validates them.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Backend:     domain.StoreBackend(s.getString(KeyStoreBackend, defaults.Store.Backend.String())),
			DataDir:     s.configStore.GetString(KeyStoreDataDir),
			PostgresURL: s.configStore.GetString(KeyStorePostgresURL),
		},
		Duplicates: domain.DuplicateSettings{
			SimilarityThreshold: s.getFloat(KeySimilarityThreshold, defaults.Duplicates.SimilarityThreshold),
			Prefilter:           s.getBool(KeyPrefilter, defaults.Duplicates.Prefilter),
		},
		Chunker: domain.ChunkerSettings{
			MaxChunkSize: s.getInt(KeyMaxChunkSize, defaults.Chunker.MaxChunkSize),
		},
		Ingest: domain.IngestSettings{
			Workers: s.getInt(KeyWorkers, defaults.Ingest.Workers),
		},
		Indexer: domain.IndexerSettings{
			URL:               s.configStore.GetString(KeyIndexerURL),
			RequestsPerSecond: s.getFloat(KeyIndexerRPS, defaults.Indexer.RequestsPerSecond),
			Burst:             s.getInt(KeyIndexerBurst, defaults.Indexer.Burst),
		},
	}

	if v, ok := s.env(EnvStore); ok {
		settings.Store.Backend = domain.StoreBackend(v)
	}
	if v, ok := s.env(EnvPostgresURL); ok {
		settings.Store.PostgresURL = v
	}
	if v, ok := s.env(EnvDataDir); ok {
		settings.Store.DataDir = v
	}
	if v, ok := s.env(EnvIndexerURL); ok {
		settings.Indexer.URL = v
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyStoreBackend, settings.Store.Backend.String()},
		{KeyStoreDataDir, settings.Store.DataDir},
		{KeyStorePostgresURL, settings.Store.PostgresURL},
		{KeySimilarityThreshold, settings.Duplicates.SimilarityThreshold},
		{KeyPrefilter, settings.Duplicates.Prefilter},
		{KeyMaxChunkSize, settings.Chunker.MaxChunkSize},
		{KeyWorkers, settings.Ingest.Workers},
		{KeyIndexerURL, settings.Indexer.URL},
		{KeyIndexerRPS, settings.Indexer.RequestsPerSecond},
		{KeyIndexerBurst, settings.Indexer.Burst},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for a known key and stores it. The resulting settings
// must still validate; otherwise nothing is written.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKind(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	// A broken config must stay fixable one key at a time.
	current, err := s.Get()
	if err != nil {
		defaults := domain.DefaultAppSettings()
		current = &defaults
	}
	applyValue(current, key, parsed)
	if err := current.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for _, k := range settingKeys {
		keys = append(keys, k.key)
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the post-processor pipeline configuration with
// the configured chunk size applied.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	if size := s.configStore.GetInt(KeyMaxChunkSize); size > 0 {
		cfg.ProcessorConfigs["chunker"]["chunk_size"] = size
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) env(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func lookupKind(key string) (keyKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

func parseValue(kind keyKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

// applyValue sets the field behind key. value has the type parseValue
// returns for the key.
func applyValue(settings *domain.AppSettings, key string, value any) {
	switch key {
	case KeyStoreBackend:
		settings.Store.Backend = domain.StoreBackend(value.(string))
	case KeyStoreDataDir:
		settings.Store.DataDir = value.(string)
	case KeyStorePostgresURL:
		settings.Store.PostgresURL = value.(string)
	case KeySimilarityThreshold:
		settings.Duplicates.SimilarityThreshold = value.(float64)
	case KeyPrefilter:
		settings.Duplicates.Prefilter = value.(bool)
	case KeyMaxChunkSize:
		settings.Chunker.MaxChunkSize = value.(int)
	case KeyWorkers:
		settings.Ingest.Workers = value.(int)
	case KeyIndexerURL:
		settings.Indexer.URL = value.(string)
	case KeyIndexerRPS:
		settings.Indexer.RequestsPerSecond = value.(float64)
	case KeyIndexerBurst:
		settings.Indexer.Burst = value.(int)
	}
}
