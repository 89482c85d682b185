package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/envault/envault/internal/crypto"
	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/storage"
)

func TestPushFirstVersion(t *testing.T) {
	engine, store := testEngine(t)
	entry := provisionKey(t, engine)

	result := mustPush(t, engine, "development", "A=1\nB=2\n", "initial import")

	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
	if result.Key != storage.VersionKey(testProjectID, "development", 1) {
		t.Errorf("key = %q", result.Key)
	}
	if result.Message != "initial import" {
		t.Errorf("message = %q", result.Message)
	}
	if result.AliasWarning != "" {
		t.Errorf("unexpected alias warning: %s", result.AliasWarning)
	}

	versionBlob, _, ok := store.Object(result.Key)
	if !ok {
		t.Fatal("version blob not stored")
	}
	if got := decryptStored(t, entry.Key, versionBlob); got != "A=1\nB=2\n" {
		t.Errorf("stored plaintext = %q", got)
	}

	aliasBlob, _, ok := store.Object(storage.LatestKey(testProjectID, "development"))
	if !ok {
		t.Fatal("latest alias not stored")
	}
	if string(aliasBlob) != string(versionBlob) {
		t.Error("alias blob differs from version blob")
	}

	meta, err := engine.Metadata.Read(context.Background(), testProjectID, "development")
	if err != nil || meta == nil {
		t.Fatalf("ledger missing after push: %v", err)
	}
	if meta.Latest != 1 || len(meta.Versions) != 1 {
		t.Errorf("ledger = latest %d, %d versions", meta.Latest, len(meta.Versions))
	}
	if meta.Versions[0].Key != result.Key {
		t.Errorf("ledger key = %q", meta.Versions[0].Key)
	}
}

func TestPushSequenceIsContiguous(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	for i := 1; i <= 5; i++ {
		content := "COUNTER=" + strings.Repeat("x", i) + "\n"
		result := mustPush(t, engine, "development", content, "")
		if result.Version != i {
			t.Fatalf("push %d got version %d", i, result.Version)
		}
	}

	meta, err := engine.Metadata.Read(context.Background(), testProjectID, "development")
	if err != nil || meta == nil {
		t.Fatalf("ledger read failed: %v", err)
	}
	if meta.Latest != 5 || len(meta.Versions) != 5 {
		t.Fatalf("ledger = latest %d, %d versions, want 5 and 5", meta.Latest, len(meta.Versions))
	}
	for i, v := range meta.Versions {
		if v.Version != i+1 {
			t.Errorf("versions[%d] = %d, want %d", i, v.Version, i+1)
		}
	}
	if err := meta.Validate(); err != nil {
		t.Errorf("ledger invalid after sequential pushes: %v", err)
	}
}

func TestPushNoChanges(t *testing.T) {
	engine, store := testEngine(t)
	provisionKey(t, engine)

	mustPush(t, engine, "development", "A=1\n", "")
	objects := store.Len()

	writeLocal(t, engine, "development", "A=1\n")
	result, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if !result.NoChanges {
		t.Fatal("identical content should be an explicit no-op")
	}
	if store.Len() != objects {
		t.Error("no-op push wrote objects")
	}

	meta, _ := engine.Metadata.Read(context.Background(), testProjectID, "development")
	if meta.Latest != 1 {
		t.Errorf("latest = %d after no-op, want 1", meta.Latest)
	}
}

func TestPushNoChangesIgnoresOrderAndQuotes(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	mustPush(t, engine, "development", "A=1\nB=two\n", "")

	// Same mapping, different order and quoting: structurally equal.
	writeLocal(t, engine, "development", "B=\"two\"\nA=1\n")
	result, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if !result.NoChanges {
		t.Error("structural comparison should ignore order and quote style")
	}
}

func TestPushForceUploadsIdenticalContent(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	mustPush(t, engine, "development", "A=1\n", "")

	writeLocal(t, engine, "development", "A=1\n")
	result, err := engine.Push(context.Background(), PushOptions{Stage: "development", Force: true})
	if err != nil {
		t.Fatalf("forced push failed: %v", err)
	}
	if result.NoChanges || result.Version != 2 {
		t.Errorf("forced push = %+v, want version 2", result)
	}
}

func TestPushFreshNoncePerUpload(t *testing.T) {
	engine, store := testEngine(t)
	provisionKey(t, engine)

	first := mustPush(t, engine, "development", "A=1\n", "")
	second, err := engine.Push(context.Background(), PushOptions{Stage: "development", Force: true})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	blobA, _, _ := store.Object(first.Key)
	blobB, _, _ := store.Object(storage.VersionKey(testProjectID, "development", second.Version))
	if string(blobA) == string(blobB) {
		t.Error("two pushes of identical plaintext produced identical ciphertext")
	}
}

func TestPushStripsHeaderBeforeEncrypting(t *testing.T) {
	engine, store := testEngine(t)
	entry := provisionKey(t, engine)

	content := envfile.RenderHeader("development", engine.now()) + "A=1\n"
	writeLocal(t, engine, "development", content)

	result, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	blob, _, _ := store.Object(result.Key)
	plaintext := decryptStored(t, entry.Key, blob)
	if plaintext != "A=1\n" {
		t.Errorf("stored plaintext = %q, header must be stripped", plaintext)
	}
	if strings.Contains(plaintext, envfile.HeaderMarker) {
		t.Error("stored plaintext still carries the provenance header")
	}
}

func TestPushEmbedsCachedSalt(t *testing.T) {
	engine, store := testEngine(t)
	entry := provisionKey(t, engine)

	result := mustPush(t, engine, "development", "A=1\n", "")

	blob, _, _ := store.Object(result.Key)
	salt, _, err := crypto.DecodePayload(blob)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if string(salt) != string(entry.Salt) {
		t.Error("pushed payload does not embed the cached key's salt")
	}
}

func TestPushProductionGate(t *testing.T) {
	engine, store := testEngine(t)
	provisionKey(t, engine)
	writeLocal(t, engine, "production", "A=1\n")

	result, err := engine.Push(context.Background(), PushOptions{Stage: "production"})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if !result.NeedsConfirmation {
		t.Fatal("production push without confirmation must stop")
	}
	if store.Len() != 0 {
		t.Error("gated push performed writes")
	}

	result, err = engine.Push(context.Background(), PushOptions{Stage: "production", Confirmed: true})
	if err != nil {
		t.Fatalf("confirmed push failed: %v", err)
	}
	if result.Version != 1 {
		t.Errorf("confirmed push version = %d", result.Version)
	}
}

func TestPushNonProductionNeedsNoConfirmation(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)
	writeLocal(t, engine, "development", "A=1\n")

	result, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if result.NeedsConfirmation {
		t.Error("development push must not require confirmation")
	}
}

func TestPushWithoutCachedKey(t *testing.T) {
	engine, _ := testEngine(t)
	writeLocal(t, engine, "development", "A=1\n")

	_, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if !errors.Is(err, everrors.ErrKeyMaterialMissing) {
		t.Fatalf("expected ErrKeyMaterialMissing, got %v", err)
	}
}

func TestPushMissingLocalFile(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	_, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if !errors.Is(err, everrors.ErrLocalFileMissing) {
		t.Fatalf("expected ErrLocalFileMissing, got %v", err)
	}
}

func TestPushDefaultMessage(t *testing.T) {
	engine, _ := testEngine(t)
	provisionKey(t, engine)

	result := mustPush(t, engine, "development", "A=1\n", "")
	if result.Message != DefaultMessage {
		t.Errorf("message = %q, want %q", result.Message, DefaultMessage)
	}

	meta, _ := engine.Metadata.Read(context.Background(), testProjectID, "development")
	if meta.Versions[0].Message != DefaultMessage {
		t.Errorf("ledger message = %q", meta.Versions[0].Message)
	}
}

func TestPushAliasFailureIsWarning(t *testing.T) {
	inner := storage.NewMemoryStore()
	store := &failPutStore{
		MemoryStore: inner,
		failKey:     storage.LatestKey(testProjectID, "development"),
	}
	engine := engineWithStore(t, store)
	provisionKey(t, engine)
	writeLocal(t, engine, "development", "A=1\n")

	result, err := engine.Push(context.Background(), PushOptions{Stage: "development"})
	if err != nil {
		t.Fatalf("push must succeed despite alias failure: %v", err)
	}
	if result.Version != 1 {
		t.Errorf("version = %d", result.Version)
	}
	if result.AliasWarning == "" {
		t.Error("alias failure must surface as a warning")
	}

	meta, err := engine.Metadata.Read(context.Background(), testProjectID, "development")
	if err != nil || meta == nil || meta.Latest != 1 {
		t.Errorf("ledger must still record the push: %+v, %v", meta, err)
	}
}

type rejectAllValidator struct{}

func (rejectAllValidator) Validate(vars map[string]string) []envfile.FieldError {
	var errs []envfile.FieldError
	for key := range vars {
		errs = append(errs, envfile.FieldError{Field: key, Message: "rejected"})
	}
	return errs
}

func TestPushValidatorBlocksUpload(t *testing.T) {
	engine, store := testEngine(t)
	provisionKey(t, engine)
	writeLocal(t, engine, "development", "A=1\n")

	_, err := engine.Push(context.Background(), PushOptions{
		Stage:     "development",
		Validator: rejectAllValidator{},
	})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("failed validation must not upload anything")
	}
}
