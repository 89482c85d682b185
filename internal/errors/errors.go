package errors

import (
	"errors"
	"fmt"
)

// Project state errors indicate issues with project configuration or initialization.
var (
	// ErrNotInitialized indicates the directory tree has no .envault project.
	ErrNotInitialized = errors.New("project has not been initialized")

	// ErrStageNotConfigured indicates the requested stage is absent from the project config.
	ErrStageNotConfigured = errors.New("stage is not configured for this project")

	// ErrLocalFileMissing indicates the stage's local environment file does not exist.
	ErrLocalFileMissing = errors.New("local environment file not found")
)

// Key material errors indicate issues with the cached encryption key.
var (
	// ErrKeyMaterialMissing indicates no cached key entry exists for this project on this machine.
	ErrKeyMaterialMissing = errors.New("no cached encryption key for this project")
)

// Remote state errors indicate the requested data is absent from the blob store.
var (
	// ErrRemoteNotFound indicates no ciphertext blob exists at any candidate key.
	ErrRemoteNotFound = errors.New("no remote environment found")

	// ErrVersionNotFound indicates the requested version number is absent from the stage's metadata.
	ErrVersionNotFound = errors.New("version not found")

	// ErrNoVersionHistory indicates the stage has no version metadata at all.
	ErrNoVersionHistory = errors.New("stage has no version history")
)

// Cryptographic errors indicate failures during decryption or payload decoding.
var (
	// ErrAuthenticationFailed indicates the key is wrong or the ciphertext was tampered with.
	ErrAuthenticationFailed = errors.New("decryption failed: incorrect passphrase or key")

	// ErrInvalidCiphertext indicates the payload does not match the salt:ciphertext wire format.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)

// StorageError wraps a network or backend failure from the blob store.
// It is distinguishable from the not-found and authentication conditions
// above so callers can report transport problems separately.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
