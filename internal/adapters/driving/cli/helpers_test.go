package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/adapters/driven/files"
	indexmem "github.com/custodia-labs/intake/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/intake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/intake/internal/core/services"
	"github.com/custodia-labs/intake/internal/normalisers"
	"github.com/custodia-labs/intake/internal/postprocessors"
)

// setupTestServices wires in-memory services and returns the store.
func setupTestServices(t *testing.T) *memory.DocumentStore {
	t.Helper()

	store := memory.NewDocumentStore()
	fs := files.New()
	pipeline, err := postprocessors.DefaultPipeline(0)
	require.NoError(t, err)

	detector := services.NewDuplicateDetectionService(store, fs)
	SetServices(Services{
		Ingest: services.NewIngestionOrchestrator(
			detector, store, fs, normalisers.NewDefaultRegistry(fs), pipeline, indexmem.New(),
		),
		Duplicate: detector,
		Documents: services.NewDocumentService(store, fs),
		Settings: services.NewSettingsService(memory.NewConfigStore(),
			services.WithLookupEnv(func(string) (string, bool) { return "", false })),
	})
	stager = fs
	uploadDir = t.TempDir()
	ownerID = "tester"

	t.Cleanup(func() {
		SetServices(Services{})
		stager = nil
		uploadDir = ""
		ownerID = defaultOwner()
		ingestFolder = ""
		ingestMIME = ""
	})
	return store
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
