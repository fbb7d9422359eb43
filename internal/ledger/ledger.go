// Package ledger persists the processing outcome of every article that
// reached a terminal state, keyed by content hash. The orchestrator uses it
// to keep overlapping runs idempotent: ok/truncated entries are never
// reprocessed inside the retention window, failed ones are retried.
package ledger

import (
	"context"
	"sync"
	"time"
)

type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeTruncated Outcome = "truncated"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one ledger record.
type Entry struct {
	ContentHash string    `json:"content_hash"`
	RunID       string    `json:"run_id"`
	Outcome     Outcome   `json:"outcome"`
	SeenAt      time.Time `json:"seen_at"`
}

// Store is the durable ledger. Entries older than the retention window are
// treated as absent. Upsert must be atomic under concurrent writers.
type Store interface {
	Lookup(ctx context.Context, contentHash string) (Outcome, bool, error)
	Upsert(ctx context.Context, entry Entry) error
	Cleanup(ctx context.Context) error
	Close() error
}

// MemoryStore is a retention-aware in-memory Store, used in tests and as a
// fallback when no persistence is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	retention time.Duration
	entries   map[string]Entry
}

func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		retention: retention,
		entries:   make(map[string]Entry),
	}
}

func (s *MemoryStore) Lookup(_ context.Context, contentHash string) (Outcome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[contentHash]
	if !exists || s.expired(entry) {
		return "", false, nil
	}
	return entry.Outcome, true, nil
}

func (s *MemoryStore) Upsert(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.SeenAt.IsZero() {
		entry.SeenAt = time.Now()
	}
	s.entries[entry.ContentHash] = entry
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, hash)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) expired(entry Entry) bool {
	return s.retention > 0 && time.Since(entry.SeenAt) > s.retention
}
