// Package fs implements the simplecms.MediaStore interface on the local
// filesystem. Buckets are directories under the base directory; it exists
// for development and single-node deployments.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// Config options for the filesystem media store.
type Config struct {
	BaseDir   string // base directory for stored objects
	URLPrefix string // optional prefix for download URLs
}

// Store is the filesystem-backed media store.
type Store struct {
	baseDir   string
	urlPrefix string
}

// New creates a filesystem media store, creating the base directory when
// missing.
func New(cfg Config) (*Store, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &Store{baseDir: cfg.BaseDir, urlPrefix: cfg.URLPrefix}, nil
}

// objectPath resolves a key inside the base directory, refusing keys that
// would escape it.
func (s *Store) objectPath(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", &simplecms.StorageError{Key: key, Op: "resolve path", Err: errors.New("invalid object key")}
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *Store) CreateBucket(ctx context.Context, name string) error {
	if err := os.MkdirAll(filepath.Join(s.baseDir, name), 0o755); err != nil {
		return &simplecms.StorageError{Bucket: name, Op: "create bucket", Err: err}
	}
	return nil
}

func (s *Store) DeleteBucket(ctx context.Context, name string) error {
	path := filepath.Join(s.baseDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &simplecms.StorageError{Bucket: name, Op: "delete bucket", Err: errors.New("bucket not found")}
	}
	if err := os.RemoveAll(path); err != nil {
		return &simplecms.StorageError{Bucket: name, Op: "delete bucket", Err: err}
	}
	return nil
}

func (s *Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	path, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &simplecms.StorageError{Key: key, Op: "upload", Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &simplecms.StorageError{Key: key, Op: "upload", Err: err}
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return &simplecms.StorageError{Key: key, Op: "upload", Err: err}
	}
	return nil
}

func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &simplecms.StorageError{Key: key, Op: "download", Err: errors.New("object not found")}
		}
		return nil, &simplecms.StorageError{Key: key, Op: "download", Err: err}
	}
	return f, nil
}

func (s *Store) DownloadURL(ctx context.Context, key string) (string, error) {
	if s.urlPrefix == "" {
		return "", &simplecms.StorageError{Key: key, Op: "presign download", Err: errors.New("no URL prefix configured")}
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.urlPrefix, "/"), key), nil
}

func (s *Store) DeleteObject(ctx context.Context, key string) error {
	path, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &simplecms.StorageError{Key: key, Op: "delete object", Err: errors.New("object not found")}
		}
		return &simplecms.StorageError{Key: key, Op: "delete object", Err: err}
	}
	return nil
}
