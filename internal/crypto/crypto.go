package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"

	everrors "github.com/envault/envault/internal/errors"
)

// SaltSize is the length in bytes of key-derivation salts.
const SaltSize = 16

// KeySize is the length in bytes of derived encryption keys.
const KeySize = 32

// Argon2id parameters: one pass over 64 MiB with 4 lanes keeps derivation
// interactively fast while remaining expensive for offline brute force.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// DeriveKey derives a 32-byte encryption key from a passphrase and salt.
// Deterministic for the same (passphrase, salt) pair. The passphrase is
// never stored or logged; callers cache only the derived key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize)
}

// NewSalt returns a fresh random key-derivation salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// Encrypt seals plaintext with AES-256-GCM under key. The returned
// ciphertext is nonce-prefixed and self-contained (nonce + data + auth tag)
// but does not embed the derivation salt; the caller carries the salt
// alongside via EncodePayload.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce-prefixed AES-256-GCM ciphertext.
// Returns errors.ErrAuthenticationFailed when the key is wrong or the
// ciphertext has been tampered with, and errors.ErrInvalidCiphertext when
// the input is too short to contain a nonce.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext shorter than nonce", everrors.ErrInvalidCiphertext)
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, everrors.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
