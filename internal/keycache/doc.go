// Package keycache stores derived encryption keys on the local
// machine so day-to-day commands never prompt for a passphrase.
//
// The cache lives at $XDG_DATA_HOME/envault/keys.toml with one table
// per project:
//
//	[projects.2f1e9c3a-77b4-4f0e-9b61-0d2a5c8e4f10]
//	salt = "base64 salt"
//	key = "base64 derived key"
//
// The salt records which derivation produced the key, so pushes can
// embed it in uploaded payloads and other machines can re-derive the
// same key from the passphrase alone. The passphrase itself is never
// written anywhere.
//
// The file is written atomically with 0600 permissions.
package keycache
