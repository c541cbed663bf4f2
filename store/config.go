package store

// Config holds store configuration.
type Config struct {
	// Path is the SQLite database file. Empty or ":memory:" keeps the store
	// in memory for the life of the process.
	Path string `yaml:"path"`
}
