// Package raft implements the core of a Raft consensus participant: the
// per-server state machine that agrees with its peers on an ordered,
// replicated sequence of opaque command entries.
package raft

import "github.com/coreraft/raftcore/raft/types"

// Term, ServerId, LogIndex, MessageId, LogEntry, IndexedEntry, and Log
// are aliases onto raft/types: the Message Codec (raft/codec) needs
// these same primitive types without depending on this package's
// handlers, which themselves depend on the codec -- so the types live
// one layer down, and both sides alias them in.
type (
	Term         = types.Term
	ServerId     = types.ServerId
	LogIndex     = types.LogIndex
	MessageId    = types.MessageId
	LogEntry     = types.LogEntry
	IndexedEntry = types.IndexedEntry
	Log          = types.Log
)

// NewLog returns an empty log.
func NewLog() *Log { return types.NewLog() }

// LogFromEntries builds a Log from an ordered slice of entries (index 1
// is entries[0]). Used when loading a persisted log.
func LogFromEntries(entries []LogEntry) *Log { return types.LogFromEntries(entries) }

// ReconcileEntries applies AppendEntries' per-entry merge rule. See
// raft/types.ReconcileEntries for the full rule.
func ReconcileEntries(base *Log, entries []IndexedEntry) *Log {
	return types.ReconcileEntries(base, entries)
}
