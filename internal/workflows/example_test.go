package workflows

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
)

func TestExampleReplacesValues(t *testing.T) {
	engine, _ := testEngine(t)
	writeLocal(t, engine, "development", "DATABASE_URL=postgres://real:hunter2@db/prod\nAPI_KEY=\"sk-live-1234\"\nDEBUG=true\n")

	result, err := engine.Example(ExampleOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("example failed: %v", err)
	}
	if result.Entries != 3 {
		t.Errorf("entries = %d, want 3", result.Entries)
	}
	if result.Path != filepath.Join(engine.Root, ".env.example") {
		t.Errorf("path = %q", result.Path)
	}

	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("reading example failed: %v", err)
	}
	content := string(raw)

	if !strings.Contains(content, envfile.HeaderMarker) {
		t.Error("example missing provenance header")
	}
	if !strings.Contains(content, "DATABASE_URL=https://example.com\n") {
		t.Errorf("url placeholder missing:\n%s", content)
	}
	if !strings.Contains(content, "API_KEY=\"your-secret-here\"\n") {
		t.Errorf("quoted secret placeholder missing:\n%s", content)
	}
	if !strings.Contains(content, "DEBUG=changeme\n") {
		t.Errorf("fallback placeholder missing:\n%s", content)
	}
	if strings.Contains(content, "hunter2") || strings.Contains(content, "sk-live") {
		t.Error("real values leaked into the example")
	}
}

func TestExampleCustomOutputPath(t *testing.T) {
	engine, _ := testEngine(t)
	writeLocal(t, engine, "staging", "A=1\n")

	result, err := engine.Example(ExampleOptions{Stage: "staging", OutputPath: "docs/env.sample"})
	if err != nil {
		t.Fatalf("example failed: %v", err)
	}
	want := filepath.Join(engine.Root, "docs", "env.sample")
	if result.Path != want {
		t.Errorf("path = %q, want %q", result.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("example not written: %v", err)
	}
}

func TestExampleMissingLocalFile(t *testing.T) {
	engine, _ := testEngine(t)

	_, err := engine.Example(ExampleOptions{Stage: "development"})
	if !errors.Is(err, everrors.ErrLocalFileMissing) {
		t.Fatalf("expected ErrLocalFileMissing, got %v", err)
	}
}
