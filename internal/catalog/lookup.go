package catalog

import "wadcat/internal/model"

// Lookup is an optional read-only source of previously known archive
// metadata, keyed by normalized directory and filename. The indexer
// consults it purely to annotate its output: a lookup failure or a
// missing match never blocks processing.
type Lookup interface {
	// FindByPath returns the known metadata for a file, or (nil, nil)
	// when nothing is known about it.
	FindByPath(dirname, filename string) (*model.KnownFile, error)
}

// NopLookup is a Lookup that knows nothing. Used when no reference
// source is configured.
type NopLookup struct{}

func (NopLookup) FindByPath(string, string) (*model.KnownFile, error) { return nil, nil }
