// Package store provides adapters for the raft.Store persistence
// contract: a file-backed adapter for real processes and an in-memory
// adapter for tests.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/coreraft/raftcore/raft"
)

// wireLogStore is the `{"_logEntries": [...]}` shape.
type wireLogStore struct {
	Entries []raft.LogEntry `json:"_logEntries"`
}

// wireTriple marshals/unmarshals a raft.PersistentTriple as the
// three-element JSON array `[term, votedForOrNull, {"_logEntries": [...]}]`.
type wireTriple raft.PersistentTriple

func (t wireTriple) MarshalJSON() ([]byte, error) {
	var votedFor interface{}
	if t.VotedFor != nil {
		votedFor = int64(*t.VotedFor)
	}
	entries := t.Log.Entries()
	if entries == nil {
		entries = []raft.LogEntry{}
	}
	return json.Marshal([3]interface{}{
		int64(t.CurrentTerm),
		votedFor,
		wireLogStore{Entries: entries},
	})
}

func (t *wireTriple) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("store: decode persistent triple: %w", err)
	}

	var term int64
	if err := json.Unmarshal(raw[0], &term); err != nil {
		return fmt.Errorf("store: decode currentTerm: %w", err)
	}

	var votedFor *int64
	if err := json.Unmarshal(raw[1], &votedFor); err != nil {
		return fmt.Errorf("store: decode votedFor: %w", err)
	}

	var logStore wireLogStore
	if err := json.Unmarshal(raw[2], &logStore); err != nil {
		return fmt.Errorf("store: decode log: %w", err)
	}

	t.CurrentTerm = raft.Term(term)
	if votedFor != nil {
		id := raft.ServerId(*votedFor)
		t.VotedFor = &id
	} else {
		t.VotedFor = nil
	}
	t.Log = raft.LogFromEntries(logStore.Entries)
	return nil
}

func encodeTriple(triple raft.PersistentTriple) ([]byte, error) {
	return json.Marshal(wireTriple(triple))
}

func decodeTriple(data []byte) (raft.PersistentTriple, error) {
	var wt wireTriple
	if err := json.Unmarshal(data, &wt); err != nil {
		return raft.PersistentTriple{}, err
	}
	return raft.PersistentTriple(wt), nil
}
