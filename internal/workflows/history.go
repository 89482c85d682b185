package workflows

import (
	"context"
	"fmt"

	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/metadata"
)

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// Stage names the version lineage to list.
	Stage string
}

// HistoryResult contains a stage's ordered version ledger.
type HistoryResult struct {
	// Stage echoes the requested stage.
	Stage string

	// Versions lists the ledger entries in upload order.
	Versions []metadata.Version

	// Latest is the version number the ledger points at.
	Latest int

	// LegacyOnly is set when the stage has no ledger but encrypted
	// data exists at a pre-versioning key. There is nothing to list,
	// but a pull would still succeed.
	LegacyOnly bool
}

// History lists the versions recorded for a stage.
//
// Returns ErrStageNotConfigured if the stage is unknown.
// Returns ErrNoVersionHistory if the stage has neither a ledger nor
// any pre-versioning blob.
func (e *Engine) History(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	if _, err := e.stagePath(opts.Stage); err != nil {
		return nil, err
	}

	meta, err := e.Metadata.Read(ctx, e.projectID(), opts.Stage)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		return &HistoryResult{
			Stage:    opts.Stage,
			Versions: meta.Versions,
			Latest:   meta.Latest,
		}, nil
	}

	// No ledger. Report legacy data when any lookup candidate exists.
	for _, candidate := range e.latestCandidates(opts.Stage) {
		exists, err := e.Store.Head(ctx, candidate.Key)
		if err != nil {
			return nil, err
		}
		if exists {
			return &HistoryResult{Stage: opts.Stage, LegacyOnly: true}, nil
		}
	}

	return nil, fmt.Errorf("%w: stage %q has no versioned history", everrors.ErrNoVersionHistory, opts.Stage)
}
