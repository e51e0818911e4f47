package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached provider payload. Payload is the raw response body; the
// store never interprets it.
type Entry struct {
	ExpiresAt time.Time
	Payload   []byte
}

// Fresh reports whether the entry may still be served without refetching.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store holds payloads by key. Get returns expired entries too; freshness is
// the caller's decision, so stale entries stay available for the
// stale-on-error path.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry)
}

// MemoryStore is the default process-local Store.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[key]
	return e, ok
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = e
}
