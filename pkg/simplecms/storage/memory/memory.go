// Package memory provides an in-memory simplecms.MediaStore for tests and
// the database-less development mode.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// Store keeps buckets and objects in process memory.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]struct{}
	objects map[string][]byte
}

// New creates an empty media store with a default bucket.
func New() *Store {
	return &Store{
		buckets: map[string]struct{}{"default": {}},
		objects: make(map[string][]byte),
	}
}

func (s *Store) CreateBucket(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[name] = struct{}{}
	return nil
}

func (s *Store) DeleteBucket(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[name]; !ok {
		return &simplecms.StorageError{Bucket: name, Op: "delete bucket", Err: errors.New("bucket not found")}
	}
	delete(s.buckets, name)
	return nil
}

func (s *Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return &simplecms.StorageError{Key: key, Op: "upload", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, &simplecms.StorageError{Key: key, Op: "download", Err: errors.New("object not found")}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) DownloadURL(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", &simplecms.StorageError{Key: key, Op: "presign download", Err: errors.New("object not found")}
	}
	return fmt.Sprintf("memory://default/%s", key), nil
}

func (s *Store) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return &simplecms.StorageError{Key: key, Op: "delete object", Err: errors.New("object not found")}
	}
	delete(s.objects, key)
	return nil
}
