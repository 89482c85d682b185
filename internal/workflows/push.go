package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/crypto"
	"github.com/envault/envault/internal/envfile"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/metadata"
	"github.com/envault/envault/internal/storage"
)

// DefaultMessage annotates versions pushed without an explicit message.
const DefaultMessage = "No message"

// PushOptions configures the push workflow.
type PushOptions struct {
	// Stage names the version lineage to push to.
	Stage string

	// Message annotates the new version. Empty means DefaultMessage.
	Message string

	// Force skips the remote comparison and always uploads a new
	// version, even when nothing changed.
	Force bool

	// Confirmed acknowledges the production gate. Pushing to the
	// production stage without it returns a confirmation-required
	// result instead of uploading.
	Confirmed bool

	// Validator, when non-nil, checks the parsed variables before
	// anything is encrypted or uploaded.
	Validator envfile.Validator
}

// PushResult contains the outcome of a push operation.
type PushResult struct {
	// NeedsConfirmation is set when the production gate has not been
	// acknowledged. Nothing was read or written.
	NeedsConfirmation bool

	// NoChanges is set when the local content structurally matches the
	// remote latest and Force was not given. Nothing was uploaded.
	NoChanges bool

	// Version is the number the new version was assigned.
	Version int

	// Key is the storage address of the uploaded ciphertext.
	Key string

	// Message is the annotation recorded in the ledger.
	Message string

	// AliasWarning carries the degraded-alias message when the latest
	// alias blob could not be updated. The push itself succeeded.
	AliasWarning string
}

// Push encrypts the stage's local env file and uploads it as the next
// version, appending to the ledger and refreshing the latest alias.
//
// The local file's provenance header is stripped before encryption, so
// stored plaintext never carries one. Unless forced, the current remote
// latest is fetched and compared structurally; identical content is an
// explicit no-op. The uploaded payload embeds the salt of this
// machine's cached key, and a fresh nonce is drawn for every upload.
//
// Returns ErrStageNotConfigured if the stage is unknown.
// Returns ErrKeyMaterialMissing if no key is cached for this project.
// Returns ErrLocalFileMissing if the stage's local file does not exist.
// Returns ErrAuthenticationFailed if the cached key cannot decrypt the
// current remote latest during comparison.
func (e *Engine) Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	path, err := e.stagePath(opts.Stage)
	if err != nil {
		return nil, err
	}

	if opts.Stage == configs.ProductionStage && !opts.Confirmed {
		return &PushResult{NeedsConfirmation: true}, nil
	}

	entry, err := e.cachedKey()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no cached key for this project", everrors.ErrKeyMaterialMissing)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", everrors.ErrLocalFileMissing, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := envfile.StripHeader(string(raw))
	doc := envfile.Parse(content)

	if opts.Validator != nil {
		if fieldErrors := opts.Validator.Validate(doc.Map()); len(fieldErrors) > 0 {
			return nil, fmt.Errorf("validation failed: %s", formatFieldErrors(fieldErrors))
		}
	}

	if !opts.Force {
		identical, err := e.matchesRemoteLatest(ctx, opts.Stage, doc, entry.Key)
		if err != nil {
			return nil, err
		}
		if identical {
			return &PushResult{NoChanges: true}, nil
		}
	}

	ciphertext, err := crypto.Encrypt([]byte(content), entry.Key)
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}
	payload := crypto.EncodePayload(entry.Salt, ciphertext)

	meta, err := e.Metadata.Read(ctx, e.projectID(), opts.Stage)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = &metadata.VersionMetadata{}
	}
	next := metadata.NextVersion(meta)

	message := opts.Message
	if message == "" {
		message = DefaultMessage
	}

	versionKey := storage.VersionKey(e.projectID(), opts.Stage, next)
	if err := e.Store.Put(ctx, versionKey, payload, storage.CiphertextContentType); err != nil {
		return nil, err
	}

	meta.Add(metadata.Version{
		Version:   next,
		Timestamp: e.now().UTC(),
		Message:   message,
		Key:       versionKey,
	})
	if err := e.Metadata.Write(ctx, e.projectID(), opts.Stage, meta); err != nil {
		return nil, err
	}

	return &PushResult{
		Version:      next,
		Key:          versionKey,
		Message:      message,
		AliasWarning: e.updateAlias(ctx, opts.Stage, payload),
	}, nil
}

// matchesRemoteLatest reports whether the local document is
// structurally identical to the decrypted remote latest. A missing
// remote means a first push, never a match.
func (e *Engine) matchesRemoteLatest(ctx context.Context, stage string, local *envfile.Document, key []byte) (bool, error) {
	payload, _, err := e.fetchLatest(ctx, stage)
	if err != nil {
		if errors.Is(err, everrors.ErrRemoteNotFound) {
			return false, nil
		}
		return false, err
	}

	_, ciphertext, err := crypto.DecodePayload(payload)
	if err != nil {
		return false, err
	}
	plaintext, err := crypto.Decrypt(ciphertext, key)
	if err != nil {
		return false, err
	}

	remote := envfile.Parse(envfile.StripHeader(string(plaintext)))
	return envfile.Compare(local.Map(), remote.Map()).Empty(), nil
}

func formatFieldErrors(fieldErrors []envfile.FieldError) string {
	parts := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}
