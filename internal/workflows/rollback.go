package workflows

import (
	"context"
	"fmt"

	"github.com/envault/envault/internal/configs"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/metadata"
	"github.com/envault/envault/internal/storage"
)

// RollbackOptions configures the rollback workflow.
type RollbackOptions struct {
	// Stage names the version lineage to roll back.
	Stage string

	// TargetVersion is the version whose content becomes the new
	// latest.
	TargetVersion int

	// ConfirmedIntent acknowledges the first production gate: the
	// intent to roll back at all.
	ConfirmedIntent bool

	// ConfirmedTarget acknowledges the second production gate: the
	// specific target version.
	ConfirmedTarget bool
}

// RollbackResult contains the outcome of a rollback operation.
type RollbackResult struct {
	// NeedsIntentConfirmation is set when the first production gate
	// has not been acknowledged. Nothing was read or written.
	NeedsIntentConfirmation bool

	// NeedsTargetConfirmation is set when the intent was confirmed but
	// the specific target has not been. Nothing was read or written.
	NeedsTargetConfirmation bool

	// NoOp is set when the target already is the latest version.
	NoOp bool

	// TargetVersion echoes the version that was restored.
	TargetVersion int

	// NewVersion is the number the restored content was uploaded as.
	NewVersion int

	// Message is the annotation recorded in the ledger.
	Message string

	// AliasWarning carries the degraded-alias message when the latest
	// alias blob could not be updated.
	AliasWarning string
}

// Rollback re-uploads an old version's ciphertext as a brand-new
// version, so history only ever grows.
//
// The target blob is copied verbatim, original salt included; nothing
// is decrypted or re-encrypted, and no key material is needed. Rolling
// back the production stage demands two separate confirmations: first
// the intent, then the specific target.
//
// Returns ErrStageNotConfigured if the stage is unknown.
// Returns ErrNoVersionHistory if the stage has no ledger; legacy
// pre-versioning stages cannot roll back.
// Returns ErrVersionNotFound if the target version is absent from the
// ledger; the error lists the available versions.
func (e *Engine) Rollback(ctx context.Context, opts RollbackOptions) (*RollbackResult, error) {
	if _, err := e.stagePath(opts.Stage); err != nil {
		return nil, err
	}

	if opts.Stage == configs.ProductionStage {
		if !opts.ConfirmedIntent {
			return &RollbackResult{NeedsIntentConfirmation: true}, nil
		}
		if !opts.ConfirmedTarget {
			return &RollbackResult{NeedsTargetConfirmation: true}, nil
		}
	}

	meta, err := e.Metadata.Read(ctx, e.projectID(), opts.Stage)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: stage %q has no versioned history to roll back", everrors.ErrNoVersionHistory, opts.Stage)
	}

	target, ok := meta.Find(opts.TargetVersion)
	if !ok {
		return nil, fmt.Errorf("%w: version %d for stage %q (available versions: %s)",
			everrors.ErrVersionNotFound, opts.TargetVersion, opts.Stage, formatVersionList(meta.Numbers()))
	}

	if target.Version == meta.Latest {
		return &RollbackResult{NoOp: true, TargetVersion: target.Version}, nil
	}

	payload, err := e.Store.Get(ctx, target.Key)
	if err != nil {
		return nil, err
	}

	next := metadata.NextVersion(meta)
	message := fmt.Sprintf("Rollback to version %d", target.Version)
	versionKey := storage.VersionKey(e.projectID(), opts.Stage, next)

	if err := e.Store.Put(ctx, versionKey, payload, storage.CiphertextContentType); err != nil {
		return nil, err
	}

	meta.Add(metadata.Version{
		Version:   next,
		Timestamp: e.now().UTC(),
		Message:   message,
		Key:       versionKey,
	})
	if err := e.Metadata.Write(ctx, e.projectID(), opts.Stage, meta); err != nil {
		return nil, err
	}

	return &RollbackResult{
		TargetVersion: target.Version,
		NewVersion:    next,
		Message:       message,
		AliasWarning:  e.updateAlias(ctx, opts.Stage, payload),
	}, nil
}
