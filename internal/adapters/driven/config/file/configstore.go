package file

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// ConfigFile is the configuration filename inside the config directory.
const ConfigFile = "config.toml"

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps the decoded TOML document as a tree of tables and
// resolves dotted keys against it.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	tree table
}

// table is one decoded TOML table.
type table = map[string]any

// DefaultConfigDir returns ~/.intake.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".intake"), nil
}

// NewConfigStore opens configDir/config.toml, creating configDir when needed.
// An empty configDir selects DefaultConfigDir.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, ConfigFile), tree: table{}}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get resolves a dotted key. Tables themselves are not values.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := lookup(s.tree, key)
	if _, isTable := val.(table); isTable {
		return nil, false
	}
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt truncates float values.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return int(number(val))
}

func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return number(val)
}

func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// Set writes the file with key updated. The in-memory tree only changes
// once the write succeeds.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTree(s.tree)
	if err := insert(next, key, value); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.tree = next
	return nil
}

// Save writes the current tree.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.tree)
}

// Load replaces the tree with the file contents. A missing or empty file
// yields an empty configuration.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.tree = table{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	loaded := table{}
	if err := toml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.tree = loaded
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// write encodes tree to a temporary file beside the config and renames it
// into place. CreateTemp gives the file mode 0600.
func (s *ConfigStore) write(tree table) error {
	encoded, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ConfigFile+".*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func lookup(tree table, key string) (any, bool) {
	var node any = tree
	for _, part := range strings.Split(key, ".") {
		t, ok := node.(table)
		if !ok {
			return nil, false
		}
		if node, ok = t[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// insert places value at key, creating intermediate tables. A key cannot
// pass through a value or replace a table, so "store" and
// "store.backend" are mutually exclusive.
func insert(tree table, key string, value any) error {
	parts := strings.Split(key, ".")
	node := tree
	for _, part := range parts[:len(parts)-1] {
		switch child := node[part].(type) {
		case nil:
			next := table{}
			node[part] = next
			node = next
		case table:
			node = child
		default:
			return fmt.Errorf("config key %q conflicts with value at %q", key, part)
		}
	}

	leaf := parts[len(parts)-1]
	if _, isTable := node[leaf].(table); isTable {
		return fmt.Errorf("config key %q conflicts with table of the same name", key)
	}
	node[leaf] = value
	return nil
}

// cloneTree copies every table so insert never touches the live tree.
func cloneTree(tree table) table {
	out := make(table, len(tree))
	maps.Copy(out, tree)
	for k, v := range out {
		if t, ok := v.(table); ok {
			out[k] = cloneTree(t)
		}
	}
	return out
}

// number reads the integer and float types go-toml decodes and callers set.
func number(val any) float64 {
	switch v := val.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
