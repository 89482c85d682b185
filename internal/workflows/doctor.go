package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/envault/envault/internal/storage"
	"github.com/envault/envault/internal/utils"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Healthy reports whether no check found a critical issue.
func (r *DoctorResult) Healthy() bool {
	return r.Summary.Errors == 0
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// Endpoint is the resolved blob store endpoint, empty when none
	// is configured. Used for reporting only; the engine's store
	// handles the actual traffic.
	Endpoint string
}

// Doctor runs health checks on the project.
//
// The doctor workflow checks:
//   - Project configuration validity
//   - Stage configuration and local file presence
//   - Cached key material
//   - Remote endpoint configuration and reachability
//   - Per-stage ledger consistency and blob existence
//
// Doctor tolerates a missing project or store; each check degrades
// into an actionable error instead of aborting the run.
func (e *Engine) Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	checks := []func() CheckResult{
		e.checkProjectConfig,
		e.checkStageConfig,
		e.checkLocalFiles,
		e.checkKeyMaterial,
		func() CheckResult { return checkRemoteEndpoint(opts.Endpoint) },
		func() CheckResult { return e.checkRemoteReachability(ctx) },
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check())
	}
	results = append(results, e.checkLedgers(ctx)...)

	summary := calculateDoctorSummary(results)

	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

// checkProjectConfig checks that the project config exists and names a
// project id.
func (e *Engine) checkProjectConfig() CheckResult {
	if e.Project == nil {
		return CheckResult{
			Name:       "Project configuration",
			Status:     CheckError,
			Message:    "No envault project found",
			Suggestion: "Run 'envault init' to initialize a project",
		}
	}
	return CheckResult{
		Name:    "Project configuration",
		Status:  CheckPass,
		Message: fmt.Sprintf("Project %q (%s)", e.Project.Project.Name, e.Project.Project.ID),
	}
}

// checkStageConfig checks that stages are configured with usable names
// and paths.
func (e *Engine) checkStageConfig() CheckResult {
	name := "Stage configuration"
	if e.Project == nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "No project config to read stages from",
			Suggestion: "Run 'envault init' to initialize a project",
		}
	}
	if len(e.Project.Stages) == 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "No stages configured",
			Suggestion: "Run 'envault init --force' to configure stages",
		}
	}

	var bad []string
	for stage, path := range e.Project.Stages {
		if !utils.IsValidStageName(stage) || path == "" {
			bad = append(bad, stage)
		}
	}
	if len(bad) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Invalid stage entries: %s", strings.Join(bad, ", ")),
			Suggestion: "Fix the [stages] table in .envault/config.toml",
		}
	}

	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("%d stage(s): %s", len(e.Project.Stages), strings.Join(e.Project.StageNames(), ", ")),
	}
}

// checkLocalFiles checks which configured stage files exist locally.
func (e *Engine) checkLocalFiles() CheckResult {
	name := "Local env files"
	if e.Project == nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Not checked (no project)"}
	}

	var missing []string
	for _, stage := range e.Project.StageNames() {
		path, err := e.stagePath(stage)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, stage)
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("No local file for: %s", strings.Join(missing, ", ")),
			Suggestion: "Run 'envault pull --stage <name>' to fetch them",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "All configured stage files present"}
}

// checkKeyMaterial checks for a cached key entry.
func (e *Engine) checkKeyMaterial() CheckResult {
	name := "Key material"
	if e.Project == nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Not checked (no project)"}
	}

	entry, err := e.cachedKey()
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Key cache unreadable: %v", err),
			Suggestion: "Run 'envault key forget' and re-provision with 'envault pull'",
		}
	}
	if entry == nil {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No cached key for this project on this machine",
			Suggestion: "Run 'envault pull' and enter the project passphrase to provision one",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Cached key present"}
}

// checkRemoteEndpoint checks that an endpoint is configured somewhere.
func checkRemoteEndpoint(endpoint string) CheckResult {
	name := "Remote endpoint"
	if endpoint == "" {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "No blob store endpoint configured",
			Suggestion: "Set ENVAULT_REMOTE_ENDPOINT or add remote.endpoint to your config",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: endpoint}
}

// checkRemoteReachability lists the project's objects to verify both
// connectivity and credentials.
func (e *Engine) checkRemoteReachability(ctx context.Context) CheckResult {
	name := "Remote reachability"
	if e.Store == nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Not checked (no endpoint configured)"}
	}
	if e.Project == nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Not checked (no project)"}
	}

	keys, err := e.Store.List(ctx, e.projectID()+"/")
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Listing project objects failed: %v", err),
			Suggestion: "Check the endpoint, your network, and ENVAULT_REMOTE_TOKEN",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%d object(s) stored for this project", len(keys))}
}

// checkLedgers validates each stage's ledger and the blobs it names.
func (e *Engine) checkLedgers(ctx context.Context) []CheckResult {
	if e.Project == nil || e.Store == nil {
		return nil
	}

	var results []CheckResult
	for _, stage := range e.Project.StageNames() {
		results = append(results, e.checkStageLedger(ctx, stage))
	}
	return results
}

func (e *Engine) checkStageLedger(ctx context.Context, stage string) CheckResult {
	name := fmt.Sprintf("Ledger (%s)", stage)

	meta, err := e.Metadata.Read(ctx, e.projectID(), stage)
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("Reading ledger failed: %v", err),
		}
	}
	if meta == nil {
		return CheckResult{Name: name, Status: CheckPass, Message: "No versioned history (nothing pushed yet)"}
	}

	if err := meta.Validate(); err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("Ledger inconsistent: %v", err),
		}
	}

	latest, ok := meta.LatestEntry()
	if ok {
		exists, err := e.Store.Head(ctx, latest.Key)
		if err != nil {
			return CheckResult{Name: name, Status: CheckError, Message: fmt.Sprintf("Checking latest blob failed: %v", err)}
		}
		if !exists {
			return CheckResult{
				Name:       name,
				Status:     CheckError,
				Message:    fmt.Sprintf("Ledger names version %d but its blob is missing", latest.Version),
				Suggestion: "Push again to repair, or roll back to an intact version",
			}
		}
	}

	aliasExists, err := e.Store.Head(ctx, storage.LatestKey(e.projectID(), stage))
	if err == nil && !aliasExists {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%d version(s) recorded but the latest alias blob is missing", len(meta.Versions)),
			Suggestion: "The next push will restore the alias",
		}
	}

	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%d version(s), latest %d", len(meta.Versions), meta.Latest)}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
