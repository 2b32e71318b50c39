package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreraft/raftcore/raft"
)

// FileStore persists the (currentTerm, votedFor, log) triple to a single
// JSON file, reading and writing it whole. It writes through a temp
// file and renames over the target so a crash mid-write cannot leave a
// corrupt file behind -- a direct write has no such guarantee.
//
// Two FileStores constructed FromName with the same name address the
// same file and must not be written concurrently; the caller (the
// Election & Replication Driver) is responsible for serializing writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// FromName returns a handle to the durable triple named by path. Two
// FileStores FromName'd with the same path refer to the same durable
// object.
func FromName(path string) *FileStore {
	return &FileStore{path: path}
}

// Read returns the last successfully written triple, or
// raft.DefaultTriple() if path does not exist yet.
func (s *FileStore) Read() (raft.PersistentTriple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return raft.DefaultTriple(), nil
	}
	if err != nil {
		return raft.PersistentTriple{}, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	triple, err := decodeTriple(data)
	if err != nil {
		return raft.PersistentTriple{}, fmt.Errorf("store: unmarshal %s: %w", s.path, err)
	}
	return triple, nil
}

// Write atomically persists triple to path: the encoded document is
// written to a sibling temp file and then renamed over the target, so
// any reader always observes either the old contents or the new ones,
// never a partial write.
func (s *FileStore) Write(triple raft.PersistentTriple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeTriple(triple)
	if err != nil {
		return fmt.Errorf("store: marshal triple: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		log.Error().Err(err).Str("path", s.path).Msg("store: rename into place failed")
		return fmt.Errorf("store: rename into place: %w", err)
	}
	return nil
}
