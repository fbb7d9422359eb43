package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileStore keeps the run ledger in a JSON file. Good enough for single-node
// deployments without a database; writes go through an in-memory map guarded
// by a mutex and are flushed on every upsert.
type FileStore struct {
	filePath  string
	retention time.Duration
	mu        sync.RWMutex
	entries   map[string]Entry
}

func NewFileStore(filePath string, retention time.Duration) (*FileStore, error) {
	s := &FileStore{
		filePath:  filePath,
		retention: retention,
		entries:   make(map[string]Entry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read ledger file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal ledger: %w", err)
	}

	cutoff := time.Now().Add(-s.retention)
	for _, entry := range entries {
		if entry.SeenAt.After(cutoff) {
			s.entries[entry.ContentHash] = entry
		}
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	return nil
}

func (s *FileStore) Lookup(_ context.Context, contentHash string) (Outcome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[contentHash]
	if !exists {
		return "", false, nil
	}
	if time.Since(entry.SeenAt) > s.retention {
		return "", false, nil
	}
	return entry.Outcome, true, nil
}

func (s *FileStore) Upsert(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.SeenAt.IsZero() {
		entry.SeenAt = time.Now()
	}
	s.entries[entry.ContentHash] = entry
	return s.flushLocked()
}

func (s *FileStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.retention)
	changed := false
	for hash, entry := range s.entries {
		if entry.SeenAt.Before(cutoff) {
			delete(s.entries, hash)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flushLocked()
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}
