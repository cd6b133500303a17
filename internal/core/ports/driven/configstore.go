package driven

// ConfigStore is a flat key/value view of configuration. Keys use dot
// notation ("llm.model"). Typed getters return the zero value when a key
// is missing or holds another type, so callers check Get when zero is a
// meaningful setting.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string

	// GetInt accepts any integer or float value; floats truncate.
	GetInt(key string) int

	// GetFloat accepts integers too.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value. Persistent stores write it through.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path is where the store persists, or a marker for stores that don't.
	Path() string
}
