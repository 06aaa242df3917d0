package encryption

import (
	"fmt"

	"wadcat/internal/config"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" (the default) returns nil: snapshots are stored
// unencrypted.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
