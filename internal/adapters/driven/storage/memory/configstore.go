package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds dot-notation settings in a map. The TOML store keeps
// its values here, and tests use it to feed settings without a file.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore merges the seed maps in order.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: map[string]any{}}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// typed returns the value under key when it has type T.
func typed[T any](s *ConfigStore, key string) T {
	v, _ := s.Get(key)
	t, _ := v.(T)
	return t
}

// number converts the numeric types TOML and YAML decoders produce.
func number[T int | float64](s *ConfigStore, key string) T {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return T(n)
	case int64:
		return T(n)
	case float64:
		return T(n)
	}
	return 0
}

func (s *ConfigStore) GetString(key string) string { return typed[string](s, key) }
func (s *ConfigStore) GetBool(key string) bool     { return typed[bool](s, key) }

// GetInt truncates floats.
func (s *ConfigStore) GetInt(key string) int       { return number[int](s, key) }
func (s *ConfigStore) GetFloat(key string) float64 { return number[float64](s, key) }

// GetStringSlice accepts []string or a decoded []any, skipping non-strings.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Replace swaps every value for values.
func (s *ConfigStore) Replace(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]any{}
	maps.Copy(s.values, values)
}

// Snapshot returns a copy of every value.
func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Keys returns every key, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Save, Load and Path have nothing to do without a file.
func (s *ConfigStore) Save() error  { return nil }
func (s *ConfigStore) Load() error  { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }
