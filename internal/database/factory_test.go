package database_test

import (
	"path/filepath"
	"testing"

	"wadcat/internal/config"
	"wadcat/internal/database"
)

func TestNewCatalogFromConfig(t *testing.T) {
	t.Run("creates a file-backed catalog", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.db")
		cat, err := database.NewCatalogFromConfig(config.DatabaseConfig{Type: "sqlite", Path: path})
		if err != nil {
			t.Fatalf("NewCatalogFromConfig() error = %v", err)
		}
		defer cat.Close()

		if cat.Path() != path {
			t.Errorf("Path() = %s, want %s", cat.Path(), path)
		}
	})

	t.Run("creates an in-memory catalog", func(t *testing.T) {
		cat, err := database.NewCatalogFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewCatalogFromConfig() error = %v", err)
		}
		defer cat.Close()
	})

	t.Run("rejects sqlite without a path", func(t *testing.T) {
		_, err := database.NewCatalogFromConfig(config.DatabaseConfig{Type: "sqlite"})
		if err == nil {
			t.Error("NewCatalogFromConfig() accepted sqlite config without a path")
		}
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := database.NewCatalogFromConfig(config.DatabaseConfig{Type: "postgres"})
		if err == nil {
			t.Error("NewCatalogFromConfig() accepted unknown database type")
		}
	})
}
