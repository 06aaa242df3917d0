package lookup

import (
	"fmt"

	"wadcat/internal/catalog"
	"wadcat/internal/config"
)

// NewLookupFromConfig creates a Lookup implementation based on the lookup
// config type. An unconfigured lookup resolves to one that knows nothing.
func NewLookupFromConfig(cfg config.LookupConfig) (catalog.Lookup, error) {
	switch cfg.Type {
	case "", "none":
		return catalog.NopLookup{}, nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite lookup")
		}
		return NewSQLiteLookup(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown lookup type: %s", cfg.Type)
	}
}
