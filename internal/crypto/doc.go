// Package crypto implements envault's passphrase-based encryption.
//
// Keys are derived from a passphrase with argon2id and a random per-project
// salt. Content is sealed with AES-256-GCM; the ciphertext carries its nonce
// and authentication tag but never the salt. The salt travels alongside the
// ciphertext in the wire payload (see EncodePayload), so any blob is
// self-describing for key re-derivation on a new machine.
//
// Decryption failures caused by a wrong key or tampering surface as
// errors.ErrAuthenticationFailed, distinct from transport errors, so the CLI
// can report "incorrect passphrase" specifically.
package crypto
