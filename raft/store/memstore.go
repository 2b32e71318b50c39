package store

import (
	"sync"

	"github.com/coreraft/raftcore/raft"
)

// MemStore is an in-memory Store, for tests that want the persistence
// discipline exercised (write-before-reply ordering) without touching a
// filesystem. Round-tripping through encodeTriple/decodeTriple keeps it
// honest to the same wire shape FileStore uses, so a bug in the JSON
// shape shows up in memory-backed tests too.
type MemStore struct {
	mu   sync.Mutex
	data []byte
	used bool
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Read() (raft.PersistentTriple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.used {
		return raft.DefaultTriple(), nil
	}
	return decodeTriple(s.data)
}

func (s *MemStore) Write(triple raft.PersistentTriple) error {
	data, err := encodeTriple(triple)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.used = true
	return nil
}
