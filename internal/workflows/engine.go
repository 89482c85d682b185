package workflows

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/envault/envault/internal/configs"
	"github.com/envault/envault/internal/crypto"
	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/keycache"
	"github.com/envault/envault/internal/metadata"
	"github.com/envault/envault/internal/storage"
)

// Engine runs the sync operations. All collaborators are injected so
// tests can substitute an in-memory store and a fixed clock. The
// engine itself never prompts; operations that need a confirmation or
// a passphrase return a result saying so before performing any I/O.
type Engine struct {
	Store    storage.Store
	Metadata *metadata.Manager
	Keys     *keycache.Cache
	Project  *configs.ProjectConfig
	Root     string

	// Now supplies timestamps; nil means time.Now.
	Now func() time.Time
}

// NewEngine wires an engine from its collaborators. Project and Store
// may be nil for operations that can run without them (Init, Doctor).
func NewEngine(store storage.Store, keys *keycache.Cache, project *configs.ProjectConfig, root string) *Engine {
	engine := &Engine{
		Store:   store,
		Keys:    keys,
		Project: project,
		Root:    root,
	}
	if store != nil {
		engine.Metadata = metadata.NewManager(store)
	}
	return engine
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) projectID() string {
	if e.Project == nil {
		return ""
	}
	return e.Project.Project.ID
}

// stagePath resolves a stage to the absolute path of its local file.
func (e *Engine) stagePath(stage string) (string, error) {
	if e.Project == nil {
		return "", everrors.ErrNotInitialized
	}
	rel, err := e.Project.StagePath(stage)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(rel) {
		return rel, nil
	}
	return filepath.Join(e.Root, rel), nil
}

// cachedKey returns this machine's key entry for the project, or nil
// when none has been provisioned yet.
func (e *Engine) cachedKey() (*keycache.Entry, error) {
	return e.Keys.Get(e.projectID())
}

// latestCandidate is one step of the ordered lookup chain for a
// stage's newest ciphertext.
type latestCandidate struct {
	Key    string
	Legacy bool
}

// latestCandidates returns the lookup chain for a stage: the
// stage-scoped alias first, then the legacy unscoped blob, which only
// the default stage consults.
func (e *Engine) latestCandidates(stage string) []latestCandidate {
	candidates := []latestCandidate{
		{Key: storage.LatestKey(e.projectID(), stage)},
	}
	if stage == configs.DefaultStage {
		candidates = append(candidates, latestCandidate{Key: storage.LegacyKey(e.projectID()), Legacy: true})
	}
	return candidates
}

// fetchLatest walks the lookup chain and returns the first blob found.
//
// Returns ErrRemoteNotFound when every candidate is absent. Any other
// storage failure aborts the chain immediately.
func (e *Engine) fetchLatest(ctx context.Context, stage string) ([]byte, latestCandidate, error) {
	candidates := e.latestCandidates(stage)
	for _, candidate := range candidates {
		data, err := e.Store.Get(ctx, candidate.Key)
		if err == nil {
			return data, candidate, nil
		}
		if !errors.Is(err, everrors.ErrRemoteNotFound) {
			return nil, latestCandidate{}, err
		}
	}

	keys := make([]string, len(candidates))
	for i, candidate := range candidates {
		keys[i] = candidate.Key
	}
	return nil, latestCandidate{}, fmt.Errorf("%w: no encrypted data for stage %q (tried %s)",
		everrors.ErrRemoteNotFound, stage, strings.Join(keys, ", "))
}

// fetchVersion returns the ciphertext of a specific version, requiring
// the ledger to know about it first.
//
// Returns ErrNoVersionHistory when the stage has no ledger at all.
// Returns ErrVersionNotFound, listing the available versions, when the
// requested number is absent from the ledger.
func (e *Engine) fetchVersion(ctx context.Context, stage string, version int) ([]byte, metadata.Version, error) {
	meta, err := e.Metadata.Read(ctx, e.projectID(), stage)
	if err != nil {
		return nil, metadata.Version{}, err
	}
	if meta == nil {
		return nil, metadata.Version{}, fmt.Errorf("%w: stage %q has no versioned history", everrors.ErrNoVersionHistory, stage)
	}

	entry, ok := meta.Find(version)
	if !ok {
		return nil, metadata.Version{}, fmt.Errorf("%w: version %d for stage %q (available versions: %s)",
			everrors.ErrVersionNotFound, version, stage, formatVersionList(meta.Numbers()))
	}

	data, err := e.Store.Get(ctx, entry.Key)
	if err != nil {
		return nil, metadata.Version{}, err
	}
	return data, entry, nil
}

// decryptPayload splits a stored payload and decrypts it with either a
// freshly derived passphrase key or the cached key. When a passphrase
// was used and decryption succeeds, the derived key is cached so later
// operations skip prompting.
//
// Returns ErrKeyMaterialMissing when no passphrase was supplied and no
// key is cached. Returns ErrAuthenticationFailed on a wrong passphrase
// or key, and ErrInvalidCiphertext on a malformed payload. The key
// cache is only written after a successful decrypt.
func (e *Engine) decryptPayload(payload []byte, passphrase string) (plaintext []byte, cached bool, err error) {
	salt, ciphertext, err := crypto.DecodePayload(payload)
	if err != nil {
		return nil, false, err
	}

	if passphrase != "" {
		key := crypto.DeriveKey(passphrase, salt)
		plaintext, err := crypto.Decrypt(ciphertext, key)
		if err != nil {
			return nil, false, err
		}
		if err := e.Keys.Put(e.projectID(), &keycache.Entry{Salt: salt, Key: key}); err != nil {
			return nil, false, fmt.Errorf("failed to cache derived key: %w", err)
		}
		return plaintext, true, nil
	}

	entry, err := e.cachedKey()
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, fmt.Errorf("%w: no cached key for this project", everrors.ErrKeyMaterialMissing)
	}

	plaintext, err = crypto.Decrypt(ciphertext, entry.Key)
	if err != nil {
		return nil, false, err
	}
	return plaintext, false, nil
}

// updateAlias overwrites the stage's latest alias blob. Failures are
// reported back as a warning string, not an error: the versioned blob
// and ledger are already persisted and remain the source of truth.
func (e *Engine) updateAlias(ctx context.Context, stage string, payload []byte) string {
	aliasKey := storage.LatestKey(e.projectID(), stage)
	if err := e.Store.Put(ctx, aliasKey, payload, storage.CiphertextContentType); err != nil {
		return fmt.Sprintf("failed to update latest alias %s: %v", aliasKey, err)
	}
	return ""
}

func formatVersionList(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
