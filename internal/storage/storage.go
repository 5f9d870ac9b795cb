package storage

import (
	"context"
	"sync"
	"time"
)

// LicenseStore holds doctor credential-license artifacts. Records keep only
// the object key; the bytes live here.
type LicenseStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MemoryLicenseStore keeps artifacts in memory. Used by tests and by local
// setups without S3 credentials.
type MemoryLicenseStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryLicenseStore() *MemoryLicenseStore {
	return &MemoryLicenseStore{objects: make(map[string][]byte)}
}

func (s *MemoryLicenseStore) Upload(_ context.Context, key, _ string, data []byte) error {
	s.mu.Lock()
	s.objects[key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryLicenseStore) PresignURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "memory://" + key, nil
}
