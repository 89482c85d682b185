package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
)

// DiffOptions configures the diff workflow.
type DiffOptions struct {
	// Stage names the version lineage to compare against.
	Stage string

	// Version selects a specific remote version. Zero means latest.
	Version int

	// AcceptMismatch proceeds even when the local file's header names
	// a different stage than the one requested.
	AcceptMismatch bool

	// Passphrase derives the decryption key when this machine has no
	// cached key, exactly as in pull.
	Passphrase string
}

// DiffResult contains the outcome of a diff operation.
type DiffResult struct {
	// NeedsPassphrase is set when no key is cached and no passphrase
	// was supplied. Nothing was fetched.
	NeedsPassphrase bool

	// StageMismatch is set when the local header names a different
	// stage and AcceptMismatch was not given. Nothing was fetched.
	// HeaderStage carries the differing stage found in the header,
	// whether or not the mismatch was accepted.
	StageMismatch bool
	HeaderStage   string

	// Changes is the four-way partition of local versus remote keys.
	Changes *envfile.DiffResult

	// Version is the remote version compared against. Zero when the
	// remote content came from a blob the ledger does not describe.
	Version int

	// Legacy is set when the remote content came from the
	// pre-versioning unscoped blob key.
	Legacy bool

	// KeyCached is set when a passphrase-derived key was persisted.
	KeyCached bool
}

// Diff compares the stage's local file against a remote version
// without modifying either side.
//
// The local header's stage marker guards against comparing the wrong
// environment: when it names a different stage, the diff stops with a
// mismatch result until the caller confirms. Headers are stripped from
// both sides before comparison, and the partition covers every key on
// either side exactly once: added (remote only), removed (local only),
// changed (both, differing values), unchanged (count).
//
// Returns ErrStageNotConfigured if the stage is unknown.
// Returns ErrLocalFileMissing if the stage's local file does not
// exist; pull first.
// Returns ErrRemoteNotFound, ErrNoVersionHistory, ErrVersionNotFound,
// ErrAuthenticationFailed, and ErrInvalidCiphertext as in pull.
func (e *Engine) Diff(ctx context.Context, opts DiffOptions) (*DiffResult, error) {
	path, err := e.stagePath(opts.Stage)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (pull first to create it)", everrors.ErrLocalFileMissing, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	localText := string(raw)

	headerStage, hasHeader := envfile.HeaderStage(localText)
	if !hasHeader || headerStage == opts.Stage {
		headerStage = ""
	}
	if headerStage != "" && !opts.AcceptMismatch {
		return &DiffResult{StageMismatch: true, HeaderStage: headerStage}, nil
	}

	if opts.Passphrase == "" {
		entry, err := e.cachedKey()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return &DiffResult{NeedsPassphrase: true}, nil
		}
	}

	result := &DiffResult{HeaderStage: headerStage}

	var payload []byte
	if opts.Version > 0 {
		data, entry, err := e.fetchVersion(ctx, opts.Stage, opts.Version)
		if err != nil {
			return nil, err
		}
		payload = data
		result.Version = entry.Version
	} else {
		data, candidate, err := e.fetchLatest(ctx, opts.Stage)
		if err != nil {
			return nil, err
		}
		payload = data
		result.Legacy = candidate.Legacy
		if meta, err := e.Metadata.Read(ctx, e.projectID(), opts.Stage); err == nil && meta != nil {
			result.Version = meta.Latest
		}
	}

	plaintext, cached, err := e.decryptPayload(payload, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	result.KeyCached = cached

	local := envfile.Parse(envfile.StripHeader(localText))
	remote := envfile.Parse(envfile.StripHeader(string(plaintext)))
	result.Changes = envfile.Compare(local.Map(), remote.Map())

	return result, nil
}
