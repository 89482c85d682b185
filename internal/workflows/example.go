package workflows

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
)

// ExampleOptions configures the example workflow.
type ExampleOptions struct {
	// Stage names the local file to derive the example from.
	Stage string

	// OutputPath overrides the output file. Empty means .env.example
	// in the project root.
	OutputPath string
}

// ExampleResult contains the outcome of an example operation.
type ExampleResult struct {
	// Path is the example file that was written.
	Path string

	// Entries is the number of variables in the example.
	Entries int
}

// Example derives a committable .env.example from the stage's local
// file. Every value is replaced with a placeholder chosen from the
// variable's name, quoting is preserved, and a fresh provenance header
// is prepended. No network access and no key material involved.
//
// Returns ErrStageNotConfigured if the stage is unknown.
// Returns ErrLocalFileMissing if the stage's local file does not
// exist.
func (e *Engine) Example(opts ExampleOptions) (*ExampleResult, error) {
	path, err := e.stagePath(opts.Stage)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", everrors.ErrLocalFileMissing, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := envfile.Parse(envfile.StripHeader(string(raw)))

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(e.Root, ".env.example")
	} else if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(e.Root, outputPath)
	}

	content := envfile.RenderHeader(opts.Stage, e.now()) + envfile.ToExample(doc)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return &ExampleResult{Path: outputPath, Entries: doc.Len()}, nil
}
