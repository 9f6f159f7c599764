package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used when no redis address is
// configured (single-node deployments, CLI commands, tests). Entries expire
// lazily on read.
type MemoryStore struct {
	entries sync.Map // key -> memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	val, ok := s.entries.Load(key)
	if !ok {
		return "", ErrMiss
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.entries.Delete(key)
		return "", ErrMiss
	}
	return entry.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries.Store(key, entry)
	return nil
}

func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}
