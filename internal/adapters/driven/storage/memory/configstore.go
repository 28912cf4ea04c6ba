package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in memory. It mirrors the file store's
// persistence: Set persists immediately and a failed write leaves the value
// unchanged. Load discards values that were never persisted.
type ConfigStore struct {
	mu      sync.RWMutex
	values  map[string]any
	saved   map[string]any
	saves   int
	failErr error
}

// NewConfigStore creates a store whose persisted state is the merge of values.
func NewConfigStore(values ...map[string]any) *ConfigStore {
	s := &ConfigStore{
		values: make(map[string]any),
		saved:  make(map[string]any),
	}
	for _, m := range values {
		maps.Copy(s.saved, m)
	}
	maps.Copy(s.values, s.saved)
	return s
}

// FailWith makes every later Set and Save return err. A nil err clears it.
func (s *ConfigStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Saves returns how many times the configuration was persisted.
func (s *ConfigStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString returns the value for key if it is a string.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt returns the value for key truncated to an int if it is numeric.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	n, _ := number(val)
	return int(n)
}

// GetFloat returns the value for key if it is numeric.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	n, _ := number(val)
	return n
}

// GetBool returns the value for key if it is a bool.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// Set stores and persists a value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.values[key] = value
	s.persist()
	return nil
}

// Save persists the current values.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.persist()
	return nil
}

// Load restores the last persisted values.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = maps.Clone(s.saved)
	return nil
}

// Path returns ":memory:".
func (s *ConfigStore) Path() string {
	return ":memory:"
}

func (s *ConfigStore) persist() {
	s.saved = maps.Clone(s.values)
	s.saves++
}

// number converts the numeric types TOML and JSON decoding produce.
func number(val any) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}
