package workflows

import (
	"context"
	"os"
	"sort"

	everrors "github.com/envault/envault/internal/errors"
)

// RemoteState classifies what exists remotely for a stage.
type RemoteState string

const (
	// RemoteVersioned means the stage has a version ledger.
	RemoteVersioned RemoteState = "versioned"
	// RemoteLegacy means encrypted data exists only at a
	// pre-versioning key.
	RemoteLegacy RemoteState = "legacy"
	// RemoteAbsent means nothing has been pushed for the stage.
	RemoteAbsent RemoteState = "absent"
	// RemoteUnknown means the remote could not be queried.
	RemoteUnknown RemoteState = "unknown"
)

// StageStatus summarizes one stage.
type StageStatus struct {
	// Stage is the stage name.
	Stage string

	// Path is the configured local file path, relative to the root.
	Path string

	// LocalExists reports whether the local file is present.
	LocalExists bool

	// Remote classifies the stage's remote data.
	Remote RemoteState

	// Versions is the number of ledger entries; zero for legacy or
	// absent stages.
	Versions int

	// Latest is the newest version number; zero when unversioned.
	Latest int
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	// SkipRemote limits the report to local information. Remote
	// states come back RemoteUnknown.
	SkipRemote bool
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	// ProjectID identifies the project.
	ProjectID string

	// ProjectName is the configured project name.
	ProjectName string

	// KeyCached reports whether this machine holds a key for the
	// project.
	KeyCached bool

	// Stages lists every configured stage, sorted by name.
	Stages []StageStatus
}

// Status reports a per-stage overview: configured path, local file
// presence, and what exists remotely.
//
// Remote queries are best-effort; a stage whose remote state cannot be
// determined is marked unknown rather than failing the whole report.
func (e *Engine) Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	if e.Project == nil {
		return nil, everrors.ErrNotInitialized
	}

	entry, err := e.cachedKey()
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		ProjectID:   e.Project.Project.ID,
		ProjectName: e.Project.Project.Name,
		KeyCached:   entry != nil,
	}

	for _, stage := range e.Project.StageNames() {
		status := StageStatus{Stage: stage, Remote: RemoteUnknown}
		status.Path, _ = e.Project.StagePath(stage)

		if path, err := e.stagePath(stage); err == nil {
			if _, err := os.Stat(path); err == nil {
				status.LocalExists = true
			}
		}

		if !opts.SkipRemote && e.Store != nil {
			status.Remote = e.remoteState(ctx, stage, &status)
		}

		result.Stages = append(result.Stages, status)
	}

	sort.Slice(result.Stages, func(i, j int) bool {
		return result.Stages[i].Stage < result.Stages[j].Stage
	})
	return result, nil
}

// remoteState classifies a stage's remote data, filling in version
// counts when a ledger exists.
func (e *Engine) remoteState(ctx context.Context, stage string, status *StageStatus) RemoteState {
	meta, err := e.Metadata.Read(ctx, e.projectID(), stage)
	if err != nil {
		return RemoteUnknown
	}
	if meta != nil {
		status.Versions = len(meta.Versions)
		status.Latest = meta.Latest
		return RemoteVersioned
	}

	for _, candidate := range e.latestCandidates(stage) {
		exists, err := e.Store.Head(ctx, candidate.Key)
		if err != nil {
			return RemoteUnknown
		}
		if exists {
			return RemoteLegacy
		}
	}
	return RemoteAbsent
}
