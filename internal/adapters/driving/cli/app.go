package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/intake/internal/adapters/driven/config/file"
	"github.com/custodia-labs/intake/internal/adapters/driven/files"
	"github.com/custodia-labs/intake/internal/adapters/driven/index/httpindex"
	indexmem "github.com/custodia-labs/intake/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/intake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/intake/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/intake/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/core/services"
	"github.com/custodia-labs/intake/internal/logger"
	"github.com/custodia-labs/intake/internal/normalisers"
	"github.com/custodia-labs/intake/internal/postprocessors"
)

// UploadsDir is the directory under the data directory holding stored uploads.
const UploadsDir = "uploads"

// App is the wired application.
type App struct {
	Settings   *services.SettingsService
	Store      driven.DocumentStore
	Files      *files.Storage
	Duplicates *services.DuplicateDetectionService
	Ingest     *services.IngestionOrchestrator
	Documents  *services.DocumentService
	UploadDir  string

	closers []func() error
}

// NewApp loads configuration from configDir and wires every service.
func NewApp(ctx context.Context, configDir string) (*App, error) {
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore)
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings from %s: %w", configStore.Path(), err)
	}

	dataDir := settings.Store.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	uploadDir := filepath.Join(dataDir, UploadsDir)
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	a := &App{
		Settings:  settingsSvc,
		Files:     files.New(),
		UploadDir: uploadDir,
	}

	if err := a.openStore(ctx, settings, dataDir); err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(settingsSvc.GetPipelineConfig())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	indexer, err := newIndexer(settings.Indexer)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Duplicates = services.NewDuplicateDetectionService(a.Store, a.Files,
		services.WithThreshold(settings.Duplicates.SimilarityThreshold),
		services.WithPrefilter(settings.Duplicates.Prefilter),
	)
	a.Ingest = services.NewIngestionOrchestrator(
		a.Duplicates, a.Store, a.Files,
		normalisers.NewDefaultRegistry(a.Files),
		pipeline, indexer,
		services.WithWorkers(settings.Ingest.Workers),
	)
	a.Documents = services.NewDocumentService(a.Store, a.Files)
	return a, nil
}

func (a *App) openStore(ctx context.Context, settings *domain.AppSettings, dataDir string) error {
	logger.Debug("opening %s store", settings.Store.Backend)
	switch settings.Store.Backend {
	case domain.StoreBackendMemory:
		a.Store = memory.NewDocumentStore()
	case domain.StoreBackendSQLite:
		st, err := sqlite.NewStore(dataDir)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		a.Store = st.DocumentStore()
		a.closers = append(a.closers, st.Close)
	case domain.StoreBackendPostgres:
		st, err := postgres.NewStore(ctx, settings.Store.PostgresURL)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		a.Store = st.DocumentStore()
		a.closers = append(a.closers, st.Close)
	default:
		return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, settings.Store.Backend)
	}
	return nil
}

func newIndexer(cfg domain.IndexerSettings) (driven.VectorIndexer, error) {
	if !cfg.IsConfigured() {
		logger.Debug("no indexer url configured, indexing in memory")
		return indexmem.New(), nil
	}
	idx, err := httpindex.New(httpindex.Config{
		BaseURL:           cfg.URL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("configure indexer: %w", err)
	}
	return idx, nil
}

// Close releases the document store.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
