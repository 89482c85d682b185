package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/envault/envault/internal/envfile"
)

// PullOptions configures the pull workflow.
type PullOptions struct {
	// Stage names the version lineage to pull from.
	Stage string

	// Version selects a specific version. Zero means latest.
	Version int

	// Passphrase derives the decryption key when this machine has no
	// cached key. The salt comes from the fetched blob itself. Leave
	// empty to use the cached key.
	Passphrase string
}

// PullResult contains the outcome of a pull operation.
type PullResult struct {
	// NeedsPassphrase is set when no key is cached and no passphrase
	// was supplied. Nothing was fetched or written.
	NeedsPassphrase bool

	// Version is the version number that was pulled. Zero when the
	// content came from a blob the ledger does not describe (legacy
	// data or an alias without metadata).
	Version int

	// Path is the local file that was written.
	Path string

	// Source is the storage key the ciphertext was fetched from.
	Source string

	// Legacy is set when the content came from the pre-versioning
	// unscoped blob key.
	Legacy bool

	// KeyCached is set when a passphrase-derived key was persisted to
	// the key cache for later operations.
	KeyCached bool
}

// Pull fetches the stage's encrypted content, decrypts it, and writes
// it to the stage's configured local path with a regenerated
// provenance header.
//
// Without a version number the latest blob is resolved through the
// ordered lookup chain: the stage-scoped alias first, then the legacy
// unscoped blob for the default stage only. With a version number the
// ledger is consulted and the exact versioned blob is fetched.
//
// Returns ErrStageNotConfigured if the stage is unknown.
// Returns ErrRemoteNotFound if no blob exists for the stage.
// Returns ErrNoVersionHistory if a version was requested but the stage
// has no ledger.
// Returns ErrVersionNotFound if the requested version is absent from
// the ledger; the error lists the available versions.
// Returns ErrAuthenticationFailed on a wrong passphrase or key.
// Returns ErrInvalidCiphertext if the stored payload is malformed.
func (e *Engine) Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	path, err := e.stagePath(opts.Stage)
	if err != nil {
		return nil, err
	}

	if opts.Passphrase == "" {
		entry, err := e.cachedKey()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return &PullResult{NeedsPassphrase: true}, nil
		}
	}

	result := &PullResult{Path: path}

	var payload []byte
	if opts.Version > 0 {
		data, entry, err := e.fetchVersion(ctx, opts.Stage, opts.Version)
		if err != nil {
			return nil, err
		}
		payload = data
		result.Version = entry.Version
		result.Source = entry.Key
	} else {
		data, candidate, err := e.fetchLatest(ctx, opts.Stage)
		if err != nil {
			return nil, err
		}
		payload = data
		result.Source = candidate.Key
		result.Legacy = candidate.Legacy

		// The ledger is consulted only to report which version the
		// alias currently holds; absence is fine.
		if meta, err := e.Metadata.Read(ctx, e.projectID(), opts.Stage); err == nil && meta != nil {
			result.Version = meta.Latest
		}
	}

	plaintext, cached, err := e.decryptPayload(payload, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	result.KeyCached = cached

	content := envfile.RenderHeader(opts.Stage, e.now()) + string(plaintext)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return result, nil
}
