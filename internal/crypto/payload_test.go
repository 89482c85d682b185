package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	everrors "github.com/envault/envault/internal/errors"
)

func TestPayloadRoundTrip(t *testing.T) {
	salt := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}
	// Ciphertext containing the delimiter: only the first colon may split.
	ciphertext := []byte("raw:bytes:with:colons")

	payload := EncodePayload(salt, ciphertext)

	gotSalt, gotCiphertext, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if !bytes.Equal(gotSalt, salt) {
		t.Errorf("salt = %x, want %x", gotSalt, salt)
	}
	if !bytes.Equal(gotCiphertext, ciphertext) {
		t.Errorf("ciphertext = %q, want %q", gotCiphertext, ciphertext)
	}
}

func TestEncodePayloadFormat(t *testing.T) {
	salt := []byte{0xab, 0xcd}
	payload := EncodePayload(salt, []byte("ct"))

	want := hex.EncodeToString(salt) + ":ct"
	if string(payload) != want {
		t.Errorf("payload = %q, want %q", payload, want)
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no delimiter", "abcdef0123456789"},
		{"non-hex salt", "not-hex!:ciphertext"},
		{"empty salt", ":ciphertext"},
		{"odd length hex", "abc:ciphertext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodePayload([]byte(tt.payload))
			if !errors.Is(err, everrors.ErrInvalidCiphertext) {
				t.Errorf("DecodePayload(%q) error = %v, want ErrInvalidCiphertext", tt.payload, err)
			}
		})
	}
}

func TestPayloadThroughEncryption(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	key := DeriveKey("team passphrase", salt)

	plaintext := []byte("DATABASE_URL=postgres://localhost:5432/app\n")
	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	payload := EncodePayload(salt, ciphertext)
	if !strings.HasPrefix(string(payload), hex.EncodeToString(salt)+":") {
		t.Fatalf("payload does not start with hex salt and delimiter")
	}

	// A new machine recovers the key from the payload salt alone.
	recoveredSalt, recoveredCiphertext, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	recoveredKey := DeriveKey("team passphrase", recoveredSalt)
	decrypted, err := Decrypt(recoveredCiphertext, recoveredKey)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip through payload mismatch: got %q", decrypted)
	}
}
