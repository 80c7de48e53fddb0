// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:features.db?cache=shared"
	//   ":memory:"
	DSN string

	// Table is the target table name, e.g. "features". Dotted values such as
	// "main.features" are quoted segment by segment.
	Table string
}
