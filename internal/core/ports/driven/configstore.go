package driven

// ConfigStore is the persisted settings file, addressed by dotted keys such
// as "store.backend" or "chunking.chunk_size". Typed getters return the zero
// value when a key is missing or has another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value and writes the file.
	Set(key string, value any) error
	Save() error

	// Path is the file location. In-memory stores report ":memory:".
	Path() string
}
