package encryption_test

import (
	"bytes"
	"strings"
	"testing"

	"wadcat/internal/encryption"
)

func TestTestEncryptor(t *testing.T) {
	t.Run("round trips data", func(t *testing.T) {
		e := encryption.NewTestEncryptor()

		plaintext := []byte("snapshot bytes")
		var ciphertext bytes.Buffer
		if err := e.Encrypt(bytes.NewReader(plaintext), &ciphertext); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if bytes.Equal(ciphertext.Bytes(), plaintext) {
			t.Error("Encrypt() output identical to input")
		}

		ctx, err := e.Unlock("any passphrase")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}

		var decrypted bytes.Buffer
		if err := ctx.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if !bytes.Equal(decrypted.Bytes(), plaintext) {
			t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), plaintext)
		}
	})

	t.Run("rejects data without the marker", func(t *testing.T) {
		ctx := &encryption.TestDecryptionContext{}

		var out bytes.Buffer
		if err := ctx.Decrypt(strings.NewReader("plain old data"), &out); err == nil {
			t.Error("Decrypt() accepted unmarked data")
		}
	})

	t.Run("is always configured", func(t *testing.T) {
		e := encryption.NewTestEncryptor()
		if !e.IsConfigured() {
			t.Error("IsConfigured() = false")
		}
		if err := e.Setup("x"); err != nil {
			t.Errorf("Setup() error = %v", err)
		}
	})
}
