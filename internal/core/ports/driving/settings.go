package driving

import "github.com/custodia-labs/intake/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings: defaults, overlaid by the config
	// file, overlaid by environment variables.
	Get() (*domain.AppSettings, error)

	// Save persists settings to the config file after validating them.
	Save(settings *domain.AppSettings) error

	// Set parses and stores a single setting by its config key.
	Set(key, value string) error

	// Keys returns the recognised config keys in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// GetPipelineConfig returns the post-processor pipeline configuration.
	GetPipelineConfig() domain.PipelineConfig
}
