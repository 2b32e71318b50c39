// Package types holds the primitive value types of the data model: Term,
// ServerId, LogIndex, MessageId, LogEntry, and the Log they compose
// into. It sits below both the Message Codec and the Server State &
// Handlers, so each of those can depend on it without depending on one
// another.
package types

import "fmt"

// Term is a monotonically non-decreasing logical clock. A server never
// decreases its own term, and observing a strictly larger term in any
// message forces a step-down to Follower and adoption of that term.
type Term int64

// ServerId stably identifies one member of a cluster.
type ServerId int64

// LogIndex is a 1-based position in a server's log. Index 0 is the
// sentinel "before the first entry", with implicit term 0.
type LogIndex int64

// MessageId is a per-sender monotonic integer used to correlate RPC
// responses with the request that produced them.
type MessageId int64

// LogEntry pairs the term in which a command was proposed with the
// command itself. The command is an opaque blob: the core never
// inspects it, only hands it to the external state machine after commit.
type LogEntry struct {
	Term    Term   `json:"_entryTerm"`
	Command []byte `json:"_entryData"`
}

func (e LogEntry) String() string {
	return fmt.Sprintf("LogEntry{term=%d, %d bytes}", e.Term, len(e.Command))
}

// IndexedEntry pairs a LogEntry with its 1-based position, as produced by
// Log.WithIndices.
type IndexedEntry struct {
	Index LogIndex
	Entry LogEntry
}
