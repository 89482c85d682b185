package storage

import "context"

// Store is a generic key-addressed blob store.
//
// Implementations must return errors.ErrRemoteNotFound (possibly wrapped)
// from Get when no object exists at the key, and wrap transport or backend
// failures in *errors.StorageError.
type Store interface {
	// Put stores data at key with the given content type, overwriting any
	// existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the object stored at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Head reports whether an object exists at key without fetching it.
	Head(ctx context.Context, key string) (bool, error)

	// List returns the keys of all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
