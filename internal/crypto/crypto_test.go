package crypto

import (
	"bytes"
	"errors"
	"testing"

	everrors "github.com/envault/envault/internal/errors"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	key := DeriveKey("correct horse battery staple", salt)

	plaintexts := [][]byte{
		[]byte("PORT=3000\nDEBUG=true\n"),
		[]byte(""),
		[]byte("VALUE=with:colons:inside\n"),
		{0x00, 0xff, 0x10, 0x80},
	}

	for _, plaintext := range plaintexts {
		ciphertext, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if bytes.Contains(ciphertext, plaintext) && len(plaintext) > 0 {
			t.Errorf("ciphertext contains plaintext verbatim")
		}

		decrypted, err := Decrypt(ciphertext, key)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	key := DeriveKey("right passphrase", salt)
	wrongKey := DeriveKey("wrong passphrase", salt)

	ciphertext, err := Encrypt([]byte("API_KEY=secret\n"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	plaintext, err := Decrypt(ciphertext, wrongKey)
	if !errors.Is(err, everrors.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if plaintext != nil {
		t.Errorf("Decrypt with wrong key returned plaintext: %q", plaintext)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	key := DeriveKey("passphrase", salt)

	ciphertext, err := Encrypt([]byte("DB_HOST=localhost\n"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip a bit in the sealed portion.
	tampered := append([]byte(nil), ciphertext...)
	tampered[len(tampered)-1] ^= 0x01

	if _, err := Decrypt(tampered, key); !errors.Is(err, everrors.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed for tampered ciphertext, got %v", err)
	}
}

func TestDecryptTooShort(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	key := DeriveKey("passphrase", salt)

	if _, err := Decrypt([]byte{0x01, 0x02}, key); !errors.Is(err, everrors.ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext for short input, got %v", err)
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}

	first := DeriveKey("passphrase", salt)
	second := DeriveKey("passphrase", salt)
	if !bytes.Equal(first, second) {
		t.Error("DeriveKey is not deterministic for the same passphrase and salt")
	}
	if len(first) != KeySize {
		t.Errorf("derived key length = %d, want %d", len(first), KeySize)
	}

	otherSalt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	if bytes.Equal(first, DeriveKey("passphrase", otherSalt)) {
		t.Error("different salts produced the same key")
	}
	if bytes.Equal(first, DeriveKey("other passphrase", salt)) {
		t.Error("different passphrases produced the same key")
	}
}

func TestNewSalt(t *testing.T) {
	first, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	second, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}

	if len(first) != SaltSize {
		t.Errorf("salt length = %d, want %d", len(first), SaltSize)
	}
	if bytes.Equal(first, second) {
		t.Error("two salts are identical")
	}
}
