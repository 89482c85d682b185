// Package storage wraps the key-addressed blob store behind the Store
// interface: put/get/head/list on opaque keys, no business logic.
//
// The production implementation (HTTPStore) talks to the store's HTTP API
// with bounded retries for transient failures. Absent objects surface as
// errors.ErrRemoteNotFound; transport and backend failures are wrapped in
// *errors.StorageError so callers can tell the two apart.
//
// Key layout is centralized here (LatestKey, VersionKey, MetadataKey,
// LegacyKey) so every component addresses the store the same way.
package storage
