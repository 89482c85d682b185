package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	everrors "github.com/envault/envault/internal/errors"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultRetryMax = 3
)

// HTTPOptions configures an HTTPStore.
type HTTPOptions struct {
	// Endpoint is the store's base URL, e.g. https://store.example.com.
	Endpoint string

	// Token, when set, is sent as a bearer token on every request.
	Token string

	// Timeout bounds each HTTP attempt. Zero means a 15 second default.
	Timeout time.Duration

	// RetryMax is the number of retries for transient failures (429, 5xx,
	// network errors). Zero means 3.
	RetryMax int
}

// HTTPStore implements Store against the blob store's HTTP API.
// Transient failures are retried with backoff by the underlying client;
// client errors (4xx) are never retried.
type HTTPStore struct {
	endpoint string
	token    string
	client   *retryablehttp.Client
}

// NewHTTPStore builds a store client for the given endpoint.
func NewHTTPStore(opts HTTPOptions) (*HTTPStore, error) {
	endpoint := strings.TrimSuffix(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is not configured")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryMax := opts.RetryMax
	if retryMax <= 0 {
		retryMax = defaultRetryMax
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.HTTPClient.Timeout = timeout
	// The CLI reports failures itself; the client's own logging is noise.
	client.Logger = nil

	return &HTTPStore{endpoint: endpoint, token: opts.Token, client: client}, nil
}

// Put stores data at key with the given content type.
func (s *HTTPStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(key), data)
	if err != nil {
		return &everrors.StorageError{Op: "put", Key: key, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return &everrors.StorageError{Op: "put", Key: key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return &everrors.StorageError{Op: "put", Key: key, Err: statusError(resp)}
	}
	return nil
}

// Get returns the object at key, or errors.ErrRemoteNotFound when absent.
func (s *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(key), nil)
	if err != nil {
		return nil, &everrors.StorageError{Op: "get", Key: key, Err: err}
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &everrors.StorageError{Op: "get", Key: key, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &everrors.StorageError{Op: "get", Key: key, Err: err}
		}
		return data, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", everrors.ErrRemoteNotFound, key)
	default:
		return nil, &everrors.StorageError{Op: "get", Key: key, Err: statusError(resp)}
	}
}

// Head reports whether an object exists at key.
func (s *HTTPStore) Head(ctx context.Context, key string) (bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, s.objectURL(key), nil)
	if err != nil {
		return false, &everrors.StorageError{Op: "head", Key: key, Err: err}
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, &everrors.StorageError{Op: "head", Key: key, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &everrors.StorageError{Op: "head", Key: key, Err: statusError(resp)}
	}
}

// List returns all keys starting with prefix.
func (s *HTTPStore) List(ctx context.Context, prefix string) ([]string, error) {
	listURL := s.endpoint + "/objects?prefix=" + url.QueryEscape(prefix)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, &everrors.StorageError{Op: "list", Key: prefix, Err: err}
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &everrors.StorageError{Op: "list", Key: prefix, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &everrors.StorageError{Op: "list", Key: prefix, Err: statusError(resp)}
	}

	var listing struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, &everrors.StorageError{Op: "list", Key: prefix, Err: err}
	}
	return listing.Keys, nil
}

func (s *HTTPStore) authorize(req *retryablehttp.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}

// objectURL builds the object endpoint, escaping each key segment while
// keeping the slashes that structure the key.
func (s *HTTPStore) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.endpoint + "/objects/" + strings.Join(segments, "/")
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status, detail)
}
