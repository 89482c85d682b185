package keycache

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/envault/envault/internal/crypto"
)

// Entry is the cached key material for one project: the salt the key
// was derived under and the derived key itself. The passphrase is
// never stored.
type Entry struct {
	Salt []byte
	Key  []byte
}

// Cache persists per-project key entries in a TOML file under the
// user's data directory.
type Cache struct {
	path string
}

// NewCache opens the cache at its default location,
// $XDG_DATA_HOME/envault/keys.toml.
func NewCache() (*Cache, error) {
	path, err := xdg.DataFile(filepath.Join("envault", "keys.toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve key cache path: %w", err)
	}
	return &Cache{path: path}, nil
}

// NewCacheAt opens the cache at an explicit path.
func NewCacheAt(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the file the cache reads and writes.
func (c *Cache) Path() string {
	return c.path
}

type keyFile struct {
	Projects map[string]keyRecord `toml:"projects"`
}

type keyRecord struct {
	Salt string `toml:"salt"`
	Key  string `toml:"key"`
}

// Get returns the entry for a project, or (nil, nil) when no key has
// been cached for it.
func (c *Cache) Get(projectID string) (*Entry, error) {
	file, err := c.load()
	if err != nil {
		return nil, err
	}

	record, ok := file.Projects[projectID]
	if !ok {
		return nil, nil
	}

	salt, err := base64.StdEncoding.DecodeString(record.Salt)
	if err != nil {
		return nil, fmt.Errorf("key cache entry for project %s is corrupt: %w", projectID, err)
	}
	key, err := base64.StdEncoding.DecodeString(record.Key)
	if err != nil {
		return nil, fmt.Errorf("key cache entry for project %s is corrupt: %w", projectID, err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("key cache entry for project %s has a %d-byte key, want %d", projectID, len(key), crypto.KeySize)
	}
	return &Entry{Salt: salt, Key: key}, nil
}

// Put stores the entry for a project, replacing any previous one.
func (c *Cache) Put(projectID string, entry *Entry) error {
	file, err := c.load()
	if err != nil {
		return err
	}

	if file.Projects == nil {
		file.Projects = make(map[string]keyRecord)
	}
	file.Projects[projectID] = keyRecord{
		Salt: base64.StdEncoding.EncodeToString(entry.Salt),
		Key:  base64.StdEncoding.EncodeToString(entry.Key),
	}
	return c.save(file)
}

// Forget removes the entry for a project. It reports whether an entry
// existed.
func (c *Cache) Forget(projectID string) (bool, error) {
	file, err := c.load()
	if err != nil {
		return false, err
	}

	if _, ok := file.Projects[projectID]; !ok {
		return false, nil
	}
	delete(file.Projects, projectID)
	if err := c.save(file); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) load() (*keyFile, error) {
	var file keyFile
	if _, err := toml.DecodeFile(c.path, &file); err != nil {
		if os.IsNotExist(err) {
			return &keyFile{}, nil
		}
		return nil, fmt.Errorf("failed to read key cache: %w", err)
	}
	return &file, nil
}

// save writes the cache atomically with owner-only permissions. Key
// material must never be readable by other users.
func (c *Cache) save(file *keyFile) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create key cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "keys-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create key cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict key cache permissions: %w", err)
	}
	if err := toml.NewEncoder(tmp).Encode(file); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode key cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write key cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace key cache: %w", err)
	}
	return nil
}
