package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intake/internal/adapters/driven/config/file"
	"github.com/custodia-labs/intake/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Reads and writes ~/.intake/config.toml. INTAKE_STORE, INTAKE_POSTGRES_URL,
INTAKE_DATA_DIR and INTAKE_INDEXER_URL override the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// ensureSettings opens the config file without opening the document store,
// so a broken store setting can still be repaired.
func ensureSettings() error {
	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	indexer := s.Indexer.URL
	if !s.Indexer.IsConfigured() {
		indexer = "(in memory)"
	}

	cmd.Println("Settings:")
	cmd.Printf("  %-32s %s (%s)\n", services.KeyStoreBackend, s.Store.Backend, s.Store.Backend.Description())
	cmd.Printf("  %-32s %s\n", services.KeyStoreDataDir, orDefault(s.Store.DataDir))
	cmd.Printf("  %-32s %s\n", services.KeyStorePostgresURL, orDefault(redact(s.Store.PostgresURL)))
	cmd.Printf("  %-32s %.2f\n", services.KeySimilarityThreshold, s.Duplicates.SimilarityThreshold)
	cmd.Printf("  %-32s %t\n", services.KeyPrefilter, s.Duplicates.Prefilter)
	cmd.Printf("  %-32s %d\n", services.KeyMaxChunkSize, s.Chunker.MaxChunkSize)
	cmd.Printf("  %-32s %d\n", services.KeyWorkers, s.Ingest.Workers)
	cmd.Printf("  %-32s %s\n", services.KeyIndexerURL, indexer)
	cmd.Printf("  %-32s %.1f\n", services.KeyIndexerRPS, s.Indexer.RequestsPerSecond)
	cmd.Printf("  %-32s %d\n", services.KeyIndexerBurst, s.Indexer.Burst)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// redact hides the password of a connection URL.
func redact(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			return u.Redacted()
		}
	}
	return raw
}
