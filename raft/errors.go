package raft

import "errors"

// Error taxonomy. Transient conditions (malformed messages, stale
// terms, log mismatches, send failures) are recovered locally by the
// handler or driver; only PersistenceFailure is fatal.
var (
	// ErrPersistenceFailure wraps a Store.Write failure. The handler
	// that produced it must not emit any outbound message that depended
	// on the failed write, and the process should generally crash
	// rather than continue with divergent in-memory/durable state.
	ErrPersistenceFailure = errors.New("raft: persistence failure")

	// ErrNotLeader is returned by ProposeCommand when the Server's
	// current role is not Leader.
	ErrNotLeader = errors.New("raft: not leader")

	// ErrUnknownPeer names a ServerId outside this Server's configured
	// peer set. No function in this package returns it; RetryAppend
	// reports an unknown peer by returning false.
	ErrUnknownPeer = errors.New("raft: unknown peer")
)
