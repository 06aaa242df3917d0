package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - WADCAT_CONFIG_PATH: config file location (default: ~/.config/wadcat.toml)
//   - WADCAT_HOME: base directory for wadcat data (default: ~/.local/share/wadcat)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking WADCAT_CONFIG_PATH
// first, then falling back to the default ~/.config/wadcat.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("WADCAT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wadcat.toml"), nil
}

// getBaseDir returns the base directory for wadcat data, checking
// WADCAT_HOME first, then falling back to the XDG default.
func getBaseDir() (string, error) {
	if path := os.Getenv("WADCAT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "wadcat"), nil
}
