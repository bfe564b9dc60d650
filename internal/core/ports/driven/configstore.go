package driven

// ConfigStore holds flat dotted keys ("embedding.provider", "search.top_k")
// read by the settings service. Typed getters return the zero value when a
// key is missing or holds a value of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) (float64, bool)
	GetStringSlice(key string) []string

	// Set stores a value; persistent implementations write through.
	Set(key string, value any) error

	// Path is where the configuration lives, or "" when it is not on disk.
	Path() string
}
