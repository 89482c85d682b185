package workflows

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/crypto"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/keycache"
	"github.com/envault/envault/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// ProjectName labels the project. Empty means the root directory's
	// base name.
	ProjectName string

	// Stages maps stage names to local file paths. Nil means the
	// default set (development, staging, production).
	Stages map[string]string

	// Passphrase seeds this machine's key entry with a fresh salt.
	// Empty skips key creation; a later pull can provision the key
	// from a teammate's pushed data instead.
	Passphrase string

	// Force permits re-initializing an already-initialized project.
	// The project id is preserved; stages and paths are replaced.
	Force bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// AlreadyInitialized is set when a config exists and Force was not
	// given. Nothing was written.
	AlreadyInitialized bool

	// Reinitialized is set when an existing project was re-initialized
	// under its preserved id.
	Reinitialized bool

	// ProjectID is the project's identifier (fresh or preserved).
	ProjectID string

	// ProjectName is the recorded project name.
	ProjectName string

	// Stages is the recorded stage map.
	Stages map[string]string

	// KeyCreated reports whether a key entry was derived and cached.
	KeyCreated bool

	// ConfigPath is the file that was written.
	ConfigPath string
}

// Init creates the .envault directory and project config, and
// optionally derives and caches this machine's key entry so the first
// push needs no prior pull.
//
// Re-running init on an existing project returns an
// already-initialized result unless forced; a forced re-init replaces
// stages and paths but preserves the project id so existing remote
// data stays addressable.
func (e *Engine) Init(opts InitOptions) (*InitResult, error) {
	existing, err := configs.LoadProject(e.Root)
	if err != nil && !errors.Is(err, everrors.ErrNotInitialized) {
		return nil, err
	}

	if existing != nil && !opts.Force {
		return &InitResult{
			AlreadyInitialized: true,
			ProjectID:          existing.Project.ID,
			ProjectName:        existing.Project.Name,
		}, nil
	}

	stages := opts.Stages
	if stages == nil {
		stages = configs.DefaultStages()
	}
	for name, path := range stages {
		if !utils.IsValidStageName(name) {
			return nil, fmt.Errorf("invalid stage name %q: use letters, digits, dots, dashes, and underscores", name)
		}
		if path == "" {
			return nil, fmt.Errorf("stage %q has no local file path", name)
		}
	}

	name := opts.ProjectName
	if name == "" {
		name = filepath.Base(e.Root)
	}

	result := &InitResult{
		ProjectName: name,
		Stages:      stages,
		ConfigPath:  configs.ConfigPath(e.Root),
	}

	config := &configs.ProjectConfig{
		Project: configs.Project{ID: configs.NewProjectID(), Name: name},
		Stages:  stages,
	}
	if existing != nil {
		config.Project.ID = existing.Project.ID
		config.Remote = existing.Remote
		result.Reinitialized = true
	}
	result.ProjectID = config.Project.ID

	if err := config.Save(e.Root); err != nil {
		return nil, err
	}
	e.Project = config

	if opts.Passphrase != "" {
		salt, err := crypto.NewSalt()
		if err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		key := crypto.DeriveKey(opts.Passphrase, salt)
		if err := e.Keys.Put(config.Project.ID, &keycache.Entry{Salt: salt, Key: key}); err != nil {
			return nil, fmt.Errorf("failed to cache derived key: %w", err)
		}
		result.KeyCreated = true
	}

	return result, nil
}

// ForgetKey removes this machine's cached key entry for the project.
// It reports whether an entry existed.
//
// After forgetting, the next pull or diff prompts for the passphrase
// and re-derives the key from the fetched blob's salt.
func (e *Engine) ForgetKey() (bool, error) {
	if e.Project == nil {
		return false, everrors.ErrNotInitialized
	}
	return e.Keys.Forget(e.projectID())
}
