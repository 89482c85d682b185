// Package errors provides typed error values for the envault application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Project errors: local project state (ErrNotInitialized, ErrStageNotConfigured)
//   - Key material errors: machine-local key cache state (ErrKeyMaterialMissing)
//   - Remote errors: absent blobs or versions (ErrRemoteNotFound, ErrVersionNotFound)
//   - Crypto errors: decryption and wire-format failures (ErrAuthenticationFailed)
//
// Transport and backend failures are wrapped in *StorageError, which carries
// the operation and object key that failed.
//
// # Usage
//
// Return errors from internal packages:
//
//	if entry == nil {
//	    return nil, errors.ErrKeyMaterialMissing
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := engine.Pull(ctx, opts)
//	if errors.Is(err, everrors.ErrAuthenticationFailed) {
//	    // Report "incorrect passphrase or key" rather than a storage failure
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: version %d requested, available versions: %s",
//	    errors.ErrVersionNotFound, n, list)
package errors
