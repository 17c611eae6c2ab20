package storage

import (
	"context"
	"io"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// ResumeStore keeps uploaded résumé PDFs in an object-storage backend.
// Database rows reference objects by key only.
type ResumeStore struct {
	backend ObjectStorage
}

// NewResumeStore constructs a ResumeStore for the provided backend.
func NewResumeStore(backend ObjectStorage) *ResumeStore {
	return &ResumeStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *ResumeStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads a résumé object under the given key.
func (s *ResumeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for a stored résumé.
func (s *ResumeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a stored résumé.
func (s *ResumeStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *ResumeStore) Bucket() string {
	return s.backend.Bucket()
}
