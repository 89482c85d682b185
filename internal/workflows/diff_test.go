package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
)

func TestDiffPartition(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	mustPush(t, engine, "development", "PORT=4000\nNEW_KEY=x\n", "")
	writeLocal(t, engine, "development", "PORT=3000\nDEBUG=true\n")

	result, err := engine.Diff(context.Background(), DiffOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if result.NeedsPassphrase || result.StageMismatch {
		t.Fatalf("diff gated unexpectedly: %+v", result)
	}

	changes := result.Changes
	if len(changes.Added) != 1 || changes.Added[0].Key != "NEW_KEY" || changes.Added[0].Value != "x" {
		t.Errorf("added = %+v", changes.Added)
	}
	if len(changes.Removed) != 1 || changes.Removed[0].Key != "DEBUG" || changes.Removed[0].Value != "true" {
		t.Errorf("removed = %+v", changes.Removed)
	}
	if len(changes.Changed) != 1 {
		t.Fatalf("changed = %+v", changes.Changed)
	}
	change := changes.Changed[0]
	if change.Key != "PORT" || change.Local != "3000" || change.Remote != "4000" {
		t.Errorf("changed entry = %+v", change)
	}
	if changes.Unchanged != 0 {
		t.Errorf("unchanged = %d, want 0", changes.Unchanged)
	}
}

func TestDiffIdenticalContent(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	mustPush(t, engine, "development", "A=1\nB=2\n", "")

	result, err := engine.Diff(context.Background(), DiffOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !result.Changes.Empty() {
		t.Errorf("expected no differences: %+v", result.Changes)
	}
	if result.Changes.Unchanged != 2 {
		t.Errorf("unchanged = %d, want 2", result.Changes.Unchanged)
	}
	if result.Version != 1 {
		t.Errorf("compared against version %d, want 1", result.Version)
	}
}

func TestDiffStageMismatchGate(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\n", "")

	// A file pulled for production, compared against development.
	content := envfile.RenderHeader("production", engine.now()) + "A=1\n"
	writeLocal(t, engine, "development", content)

	result, err := engine.Diff(context.Background(), DiffOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !result.StageMismatch {
		t.Fatal("mismatched header stage must gate the diff")
	}
	if result.HeaderStage != "production" {
		t.Errorf("header stage = %q", result.HeaderStage)
	}
	if result.Changes != nil {
		t.Error("gated diff must not compute changes")
	}

	accepted, err := engine.Diff(context.Background(), DiffOptions{Stage: "development", AcceptMismatch: true})
	if err != nil {
		t.Fatalf("accepted diff failed: %v", err)
	}
	if accepted.StageMismatch || accepted.Changes == nil {
		t.Errorf("accepted diff should proceed: %+v", accepted)
	}
	if accepted.HeaderStage != "production" {
		t.Errorf("accepted diff should still report the header stage, got %q", accepted.HeaderStage)
	}
}

func TestDiffHeaderlessLocalFile(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\n", "")

	// Hand-written file with no header: no stage marker, no gate.
	writeLocal(t, engine, "development", "A=1\n")

	result, err := engine.Diff(context.Background(), DiffOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if result.StageMismatch {
		t.Error("headerless file must not trigger the mismatch gate")
	}
}

func TestDiffLocalFileMissing(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	_, err := engine.Diff(context.Background(), DiffOptions{Stage: "development"})
	if !errors.Is(err, everrors.ErrLocalFileMissing) {
		t.Fatalf("expected ErrLocalFileMissing, got %v", err)
	}
}

func TestDiffSpecificVersion(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "V=one\n", "")
	mustPush(t, engine, "development", "V=two\n", "")

	writeLocal(t, engine, "development", "V=two\n")
	result, err := engine.Diff(context.Background(), DiffOptions{Stage: "development", Version: 1})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if result.Version != 1 {
		t.Errorf("version = %d", result.Version)
	}
	if len(result.Changes.Changed) != 1 || result.Changes.Changed[0].Remote != "one" {
		t.Errorf("changed = %+v", result.Changes.Changed)
	}
}

func TestDiffVersionNotFound(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\n", "")
	writeLocal(t, engine, "development", "A=1\n")

	_, err := engine.Diff(context.Background(), DiffOptions{Stage: "development", Version: 9})
	if !errors.Is(err, everrors.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestDiffPassphraseProvisioning(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\n", "")

	other := secondMachine(t, engine)
	writeLocal(t, other, "development", "A=2\n")

	gated, err := other.Diff(context.Background(), DiffOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !gated.NeedsPassphrase {
		t.Fatal("machine without a key must be asked for a passphrase")
	}

	result, err := other.Diff(context.Background(), DiffOptions{Stage: "development", Passphrase: testPassphrase})
	if err != nil {
		t.Fatalf("passphrase diff failed: %v", err)
	}
	if !result.KeyCached {
		t.Error("successful passphrase diff must cache the key")
	}
	if len(result.Changes.Changed) != 1 {
		t.Errorf("changed = %+v", result.Changes.Changed)
	}
}
