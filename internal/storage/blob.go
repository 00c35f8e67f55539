package storage

import (
	"context"
	"sync"
)

// BlobStore is a durable map of named string values, the shape of a
// browser's local storage.
type BlobStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, values map[string]string) error
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]string
}

// NewMemoryStore returns a store pre-filled with seed, which may be nil.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	blobs := make(map[string]string, len(seed))
	for k, v := range seed {
		blobs[k] = v
	}
	return &MemoryStore{blobs: blobs}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.blobs[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = value
	return nil
}

func (s *MemoryStore) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.blobs[k] = v
	}
	return nil
}
