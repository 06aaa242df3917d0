package database

import (
	"fmt"

	"wadcat/internal/config"
)

// NewCatalogFromConfig creates a SQLiteCatalog based on the database config type.
func NewCatalogFromConfig(cfg config.DatabaseConfig) (*SQLiteCatalog, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite database")
		}
		return NewSQLiteCatalog(cfg.Path)
	case "memory":
		return NewSQLiteCatalog(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
