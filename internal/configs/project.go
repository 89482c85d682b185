package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	everrors "github.com/envault/envault/internal/errors"
)

const (
	// DirName is the project marker directory created by init.
	DirName = ".envault"

	// ConfigFileName is the project config file inside DirName.
	ConfigFileName = "config.toml"

	// DefaultStage is assumed when no --stage flag is given. It is
	// also the only stage that consults the legacy blob key.
	DefaultStage = "development"

	// ProductionStage triggers extra confirmation gating on push and
	// rollback.
	ProductionStage = "production"
)

// ProjectConfig is the committed per-project configuration at
// .envault/config.toml. It carries no secrets.
type ProjectConfig struct {
	Project Project           `toml:"project"`
	Stages  map[string]string `toml:"stages"`
	Remote  RemoteConfig      `toml:"remote"`
}

type Project struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// RemoteConfig optionally pins the blob store endpoint for everyone on
// the project. User settings and ENVAULT_ variables take precedence.
type RemoteConfig struct {
	Endpoint string `toml:"endpoint,omitempty"`
}

// ConfigPath returns the project config file under a project root.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, ConfigFileName)
}

// NewProjectID generates a fresh project identifier.
func NewProjectID() string {
	return uuid.New().String()
}

// DefaultStages returns the stage set init offers: stage name to local
// file path, relative to the project root.
func DefaultStages() map[string]string {
	return map[string]string{
		DefaultStage:    ".env",
		"staging":       ".env.staging",
		ProductionStage: ".env.production",
	}
}

// LoadProject reads the project config under root. A missing config
// file means the project was never initialized.
func LoadProject(root string) (*ProjectConfig, error) {
	path := ConfigPath(root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no %s found under %s", everrors.ErrNotInitialized, ConfigFileName, filepath.Join(root, DirName))
	}

	config := &ProjectConfig{
		Stages: make(map[string]string),
	}
	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	if config.Project.ID == "" {
		return nil, fmt.Errorf("%w: project config has no project id", everrors.ErrNotInitialized)
	}
	return config, nil
}

// Save writes the project config under root.
func (pc *ProjectConfig) Save(root string) error {
	if err := SaveTOML(ConfigPath(root), pc); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}
	return nil
}

// StagePath resolves a stage name to its configured local file path,
// relative to the project root.
func (pc *ProjectConfig) StagePath(stage string) (string, error) {
	path, ok := pc.Stages[stage]
	if !ok {
		return "", fmt.Errorf("%w: %q (configured stages: %s)", everrors.ErrStageNotConfigured, stage, strings.Join(pc.StageNames(), ", "))
	}
	return path, nil
}

// HasStage reports whether a stage is configured.
func (pc *ProjectConfig) HasStage(stage string) bool {
	_, ok := pc.Stages[stage]
	return ok
}

// StageNames returns the configured stage names in sorted order.
func (pc *ProjectConfig) StageNames() []string {
	names := make([]string, 0, len(pc.Stages))
	for name := range pc.Stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
