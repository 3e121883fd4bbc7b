package db

import (
	"fmt"
	"strings"

	"benchtrim/internal/benchmark"
)

// DefaultSQLitePath is used when the sqlite driver is selected without a DSN.
const DefaultSQLitePath = ".benchtrim/history.db"

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Driver string // "json", "sqlite" or "postgres"
	DSN    string // File path for JSON and SQLite, DSN for Postgres
}

// NewStore creates a new run history store based on the provided configuration
func NewStore(config StoreConfig) (benchmark.Store, error) {
	switch strings.ToLower(config.Driver) {
	case "postgres", "postgresql":
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(config.DSN)
	case "sqlite", "sqlite3", "":
		if config.DSN == "" {
			config.DSN = DefaultSQLitePath
		}
		return NewSQLiteStore(config.DSN)
	case "json":
		if config.DSN == "" {
			return nil, fmt.Errorf("json history path is required")
		}
		return benchmark.NewFileStore(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Driver)
	}
}
