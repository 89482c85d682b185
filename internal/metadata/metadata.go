package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	everrors "github.com/envault/envault/internal/errors"
	"github.com/envault/envault/internal/storage"
)

// Version describes one uploaded snapshot of a stage.
type Version struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Key       string    `json:"key"`
}

// VersionMetadata is the per-stage ledger stored alongside the blobs.
// Versions are kept in upload order and Latest names the newest entry.
type VersionMetadata struct {
	Versions []Version `json:"versions"`
	Latest   int       `json:"latest"`
}

// Add appends a version entry and advances Latest.
func (m *VersionMetadata) Add(v Version) {
	m.Versions = append(m.Versions, v)
	m.Latest = v.Version
}

// Find returns the entry for the given version number.
func (m *VersionMetadata) Find(version int) (Version, bool) {
	for _, v := range m.Versions {
		if v.Version == version {
			return v, true
		}
	}
	return Version{}, false
}

// LatestEntry returns the entry Latest points at.
func (m *VersionMetadata) LatestEntry() (Version, bool) {
	return m.Find(m.Latest)
}

// Numbers returns all recorded version numbers in ascending order.
func (m *VersionMetadata) Numbers() []int {
	numbers := make([]int, 0, len(m.Versions))
	for _, v := range m.Versions {
		numbers = append(numbers, v.Version)
	}
	sort.Ints(numbers)
	return numbers
}

// Validate checks ledger consistency. Latest must name the highest
// version number and every number must appear exactly once.
func (m *VersionMetadata) Validate() error {
	if len(m.Versions) == 0 {
		if m.Latest != 0 {
			return fmt.Errorf("metadata lists no versions but latest is %d", m.Latest)
		}
		return nil
	}

	seen := make(map[int]bool, len(m.Versions))
	max := 0
	for _, v := range m.Versions {
		if v.Version < 1 {
			return fmt.Errorf("metadata contains invalid version number %d", v.Version)
		}
		if seen[v.Version] {
			return fmt.Errorf("metadata lists version %d more than once", v.Version)
		}
		seen[v.Version] = true
		if v.Version > max {
			max = v.Version
		}
	}
	if m.Latest != max {
		return fmt.Errorf("metadata latest is %d but highest recorded version is %d", m.Latest, max)
	}
	return nil
}

// Manager reads and writes per-stage version ledgers through a Store.
type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Read fetches the ledger for a stage. A missing ledger is not an
// error: it returns (nil, nil) so callers can distinguish "no history
// yet" from a transport failure.
func (m *Manager) Read(ctx context.Context, projectID, stage string) (*VersionMetadata, error) {
	data, err := m.store.Get(ctx, storage.MetadataKey(projectID, stage))
	if err != nil {
		if errors.Is(err, everrors.ErrRemoteNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var meta VersionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse version metadata: %w", err)
	}
	return &meta, nil
}

// Write uploads the ledger for a stage.
func (m *Manager) Write(ctx context.Context, projectID, stage string, meta *VersionMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode version metadata: %w", err)
	}
	return m.store.Put(ctx, storage.MetadataKey(projectID, stage), data, storage.MetadataContentType)
}

// NextVersion returns the number the next upload should take. The
// first upload of a stage is version 1.
func NextVersion(meta *VersionMetadata) int {
	if meta == nil || len(meta.Versions) == 0 {
		return 1
	}
	return meta.Latest + 1
}
