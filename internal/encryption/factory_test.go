package encryption_test

import (
	"testing"

	"wadcat/internal/config"
	"wadcat/internal/encryption"
)

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("none yields nil", func(t *testing.T) {
		for _, typ := range []string{"none", ""} {
			e, err := encryption.NewEncryptorFromConfig(config.EncryptionConfig{Type: typ})
			if err != nil {
				t.Fatalf("NewEncryptorFromConfig(%q) error = %v", typ, err)
			}
			if e != nil {
				t.Errorf("NewEncryptorFromConfig(%q) = %T, want nil", typ, e)
			}
		}
	})

	t.Run("age", func(t *testing.T) {
		e, err := encryption.NewEncryptorFromConfig(config.EncryptionConfig{Type: "age"})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*encryption.AgeEncryptor); !ok {
			t.Errorf("NewEncryptorFromConfig() = %T, want *AgeEncryptor", e)
		}
	})

	t.Run("test", func(t *testing.T) {
		e, err := encryption.NewEncryptorFromConfig(config.EncryptionConfig{Type: "test"})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*encryption.TestEncryptor); !ok {
			t.Errorf("NewEncryptorFromConfig() = %T, want *TestEncryptor", e)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := encryption.NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}); err == nil {
			t.Error("NewEncryptorFromConfig() accepted unknown type")
		}
	})
}
