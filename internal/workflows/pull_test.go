package workflows

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/envault/envault/internal/crypto"
	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/storage"
)

func TestPullLatestRoundTrip(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\nB=hello\n", "")

	path, _ := engine.stagePath("development")
	if err := os.Remove(path); err != nil {
		t.Fatalf("removing local file failed: %v", err)
	}

	result, err := engine.Pull(context.Background(), PullOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.NeedsPassphrase {
		t.Fatal("cached key present, no passphrase should be needed")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
	if result.Legacy {
		t.Error("versioned pull marked legacy")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading pulled file failed: %v", err)
	}
	text := string(raw)

	if !strings.Contains(text, envfile.HeaderMarker) {
		t.Error("pulled file has no provenance header")
	}
	if stage, ok := envfile.HeaderStage(text); !ok || stage != "development" {
		t.Errorf("header stage = %q, %v", stage, ok)
	}
	if got := envfile.StripHeader(text); got != "A=1\nB=hello\n" {
		t.Errorf("body = %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("pulled file permissions = %o, want 0600", perm)
	}
}

func TestPullNeedsPassphraseBeforeNetwork(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\n", "")

	other := secondMachine(t, engine)
	result, err := other.Pull(context.Background(), PullOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if !result.NeedsPassphrase {
		t.Fatal("machine without a cached key must be asked for a passphrase")
	}

	path, _ := other.stagePath("development")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("gated pull wrote a local file")
	}
}

func TestPullPassphraseProvisionsKey(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "SECRET=value\n", "")

	other := secondMachine(t, engine)
	result, err := other.Pull(context.Background(), PullOptions{Stage: "development", Passphrase: testPassphrase})
	if err != nil {
		t.Fatalf("passphrase pull failed: %v", err)
	}
	if !result.KeyCached {
		t.Error("successful passphrase decrypt must cache the key")
	}

	entry, err := other.Keys.Get(testProjectID)
	if err != nil || entry == nil {
		t.Fatalf("key entry missing after provisioning: %v", err)
	}

	// Second pull runs on the cached key alone.
	second, err := other.Pull(context.Background(), PullOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("second pull failed: %v", err)
	}
	if second.NeedsPassphrase {
		t.Error("second pull still asked for a passphrase")
	}
	if second.KeyCached {
		t.Error("cached-key pull should not re-cache")
	}
}

func TestPullWrongPassphraseCachesNothing(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "A=1\n", "")

	other := secondMachine(t, engine)
	_, err := other.Pull(context.Background(), PullOptions{Stage: "development", Passphrase: "not the passphrase"})
	if !errors.Is(err, everrors.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}

	entry, err := other.Keys.Get(testProjectID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry != nil {
		t.Error("failed decrypt must not cache a key")
	}

	path, _ := other.stagePath("development")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed pull wrote a local file")
	}
}

func TestPullSpecificVersion(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "V=one\n", "first")
	mustPush(t, engine, "development", "V=two\n", "second")

	result, err := engine.Pull(context.Background(), PullOptions{Stage: "development", Version: 1})
	if err != nil {
		t.Fatalf("pull of version 1 failed: %v", err)
	}
	if result.Version != 1 {
		t.Errorf("version = %d", result.Version)
	}
	if result.Source != storage.VersionKey(testProjectID, "development", 1) {
		t.Errorf("source = %q", result.Source)
	}

	raw, _ := os.ReadFile(result.Path)
	if got := envfile.StripHeader(string(raw)); got != "V=one\n" {
		t.Errorf("pulled body = %q, want the old version", got)
	}
}

func TestPullVersionNotFoundListsAvailable(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	mustPush(t, engine, "development", "V=1\n", "")
	mustPush(t, engine, "development", "V=2\n", "")
	mustPush(t, engine, "development", "V=3\n", "")

	_, err := engine.Pull(context.Background(), PullOptions{Stage: "development", Version: 5})
	if !errors.Is(err, everrors.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "1, 2, 3") {
		t.Errorf("error should list available versions: %v", err)
	}
}

func TestPullVersionWithoutHistory(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	_, err := engine.Pull(context.Background(), PullOptions{Stage: "development", Version: 1})
	if !errors.Is(err, everrors.ErrNoVersionHistory) {
		t.Fatalf("expected ErrNoVersionHistory, got %v", err)
	}
}

func TestPullLegacyFallback(t *testing.T) {
	engine, store := testEngine(t)
	entry := provisionKey(t, engine)
	ctx := context.Background()

	// Only a pre-versioning blob exists: no ledger, no stage alias.
	ciphertext, err := crypto.Encrypt([]byte("LEGACY=true\n"), entry.Key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	payload := crypto.EncodePayload(entry.Salt, ciphertext)
	store.Put(ctx, storage.LegacyKey(testProjectID), payload, storage.CiphertextContentType)

	result, err := engine.Pull(ctx, PullOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("legacy pull failed: %v", err)
	}
	if !result.Legacy {
		t.Error("pull from the legacy key must be marked legacy")
	}
	if result.Version != 0 {
		t.Errorf("legacy pull version = %d, want 0", result.Version)
	}

	raw, _ := os.ReadFile(result.Path)
	if got := envfile.StripHeader(string(raw)); got != "LEGACY=true\n" {
		t.Errorf("pulled body = %q", got)
	}

	// Other stages never consult the legacy key.
	_, err = engine.Pull(ctx, PullOptions{Stage: "staging"})
	if !errors.Is(err, everrors.ErrRemoteNotFound) {
		t.Fatalf("staging pull should fail with ErrRemoteNotFound, got %v", err)
	}
}

func TestPullNothingRemote(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	_, err := engine.Pull(context.Background(), PullOptions{Stage: "development"})
	if !errors.Is(err, everrors.ErrRemoteNotFound) {
		t.Fatalf("expected ErrRemoteNotFound, got %v", err)
	}
}

func TestPullUnknownStage(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	_, err := engine.Pull(context.Background(), PullOptions{Stage: "qa"})
	if !errors.Is(err, everrors.ErrStageNotConfigured) {
		t.Fatalf("expected ErrStageNotConfigured, got %v", err)
	}
}

func TestPullCreatesParentDirectories(t *testing.T) {
	engine, store := testEngine(t)
	provisionKey(t, engine)
	engine.Project.Stages["development"] = "config/env/.env"

	// Serve development through its alias with staging's pushed blob.
	mustPush(t, engine, "staging", "A=1\n", "")
	payload, _, _ := store.Object(storage.VersionKey(testProjectID, "staging", 1))
	store.Put(context.Background(), storage.LatestKey(testProjectID, "development"), payload, storage.CiphertextContentType)

	result, err := engine.Pull(context.Background(), PullOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("pull into nested path failed: %v", err)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("pulled file missing: %v", err)
	}
}
