package raft

// PersistentTriple is the durable (currentTerm, votedFor, log) state a
// Server must recover verbatim after a crash. VotedFor is nil when the
// server has not yet voted in CurrentTerm.
type PersistentTriple struct {
	CurrentTerm Term
	VotedFor    *ServerId
	Log         *Log
}

// DefaultTriple is the value a Store.Read returns when no prior state
// exists.
func DefaultTriple() PersistentTriple {
	return PersistentTriple{CurrentTerm: 0, VotedFor: nil, Log: NewLog()}
}

// Store is the persistence contract: Write must complete (or fail)
// atomically, and a successful Write must be visible to every
// subsequent Read, including one made by a freshly started process
// against the same name. Store implementations live in raft/store; this
// interface is kept in package raft so Server can depend on the
// contract without depending on any one adapter.
type Store interface {
	// Read returns the last successfully written triple, or
	// DefaultTriple() if nothing has ever been written.
	Read() (PersistentTriple, error)
	// Write durably persists triple. It must not return until the write
	// is safe to be observed by a future Read, including one from a
	// different process instance.
	Write(triple PersistentTriple) error
}
