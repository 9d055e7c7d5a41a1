package repo

import (
	"context"
	"sync"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	m        map[string]string
	writes   int
	writeErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: make(map[string]string)}
}

func (s *MemoryStorage) Read(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrorInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStorage) Write(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrorInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.m[key] = value
	s.writes++
	return nil
}

// FailWrites makes every following Write return err (nil restores normal writes).
// Simulates an exhausted quota or an unavailable backend.
func (s *MemoryStorage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes counts successful writes.
func (s *MemoryStorage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
