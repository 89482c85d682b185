package storage

import "fmt"

// Content types for stored objects.
const (
	CiphertextContentType = "application/octet-stream"
	MetadataContentType   = "application/json"
)

// LatestKey addresses a stage's non-versioned "latest" alias blob, kept in
// sync with the newest version for pre-versioning consumers.
func LatestKey(projectID, stage string) string {
	return fmt.Sprintf("%s/%s/env.encrypted", projectID, stage)
}

// VersionKey addresses the immutable ciphertext blob of one version.
func VersionKey(projectID, stage string, version int) string {
	return fmt.Sprintf("%s/%s/v%d/env.encrypted", projectID, stage, version)
}

// MetadataKey addresses a stage's version ledger.
func MetadataKey(projectID, stage string) string {
	return fmt.Sprintf("%s/%s/metadata.json", projectID, stage)
}

// LegacyKey addresses the pre-versioning, non-stage-scoped blob consulted
// only for the default stage.
func LegacyKey(projectID string) string {
	return fmt.Sprintf("%s/env.encrypted", projectID)
}

// StagePrefix is the key prefix under which all of a stage's objects live.
func StagePrefix(projectID, stage string) string {
	return fmt.Sprintf("%s/%s/", projectID, stage)
}
