// Package localstore is a small durable key-value store backed by a single
// JSON file. It plays the role browser local storage does for the web client:
// the auth token and the manual verification override live here and survive
// process restarts.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "localstore.json"

// Store is safe for concurrent use. Every mutation rewrites the backing file
// atomically (write to temp file, then rename).
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// New loads (or initializes) the store under dir, creating dir if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		path: filepath.Join(dir, fileName),
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read localstore: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			// A corrupt file degrades to an empty store rather than bricking
			// startup; the next write replaces it.
			s.data = make(map[string]json.RawMessage)
		}
	}
	return s, nil
}

// Get unmarshals the value stored under key into out. The boolean reports
// whether the key was present.
func (s *Store) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode localstore key %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key and flushes to disk.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode localstore key %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flushLocked()
}

// Delete removes key and flushes to disk. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode localstore: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write localstore: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace localstore: %w", err)
	}
	return nil
}
