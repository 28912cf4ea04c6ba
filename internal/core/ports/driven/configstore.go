package driven

// ConfigStore holds flat dot-separated configuration keys such as
// "store.backend" or "duplicates.similarity_threshold".
type ConfigStore interface {
	// Get returns the raw value for key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns the value for key, or "" when unset or not a string.
	GetString(key string) string

	// GetInt returns the value for key, or 0 when unset or not numeric.
	GetInt(key string) int

	// GetFloat returns the value for key, or 0 when unset or not numeric.
	// Integer values are converted.
	GetFloat(key string) float64

	// GetBool returns the value for key, or false when unset or not a bool.
	GetBool(key string) bool

	// Set stores value and persists it immediately. When persisting fails
	// the previous value is kept.
	Set(key string, value any) error

	// Save persists all values.
	Save() error

	// Load replaces the values with the persisted ones.
	Load() error

	// Path identifies where the configuration is persisted.
	Path() string
}
