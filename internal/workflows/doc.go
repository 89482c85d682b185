// Package workflows implements the sync engine behind every envault
// command.
//
// Each operation is a method on Engine taking an Options struct and
// returning a Result struct, so the command layer stays a thin shell
// that renders output and asks questions. The engine never prompts:
// when an operation needs a confirmation (production pushes and
// rollbacks) or a passphrase (no cached key), it returns a result
// saying so before touching the network, and the caller re-invokes
// with the answer filled in.
//
// # Version lineage
//
// Every push uploads a new immutable version and appends it to the
// stage's ledger; the stage's latest alias blob is refreshed
// best-effort afterwards. Rollback re-uploads an old version's exact
// ciphertext as a new version. History only grows; nothing in this
// package deletes remote data.
//
// # Key material
//
// Operations that decrypt resolve the key in one of two ways: the
// machine's cached entry, or a passphrase combined with the salt
// embedded in the fetched blob. A successful passphrase decrypt caches
// the derived key. Push requires a cached key outright since it must
// encrypt with the project's established salt.
//
// # Errors
//
// Failures are reported through the sentinel catalog in
// internal/errors and matched with errors.Is. Operation doc comments
// list the sentinels they return.
package workflows
