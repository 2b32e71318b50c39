// Package transport defines the peer-to-peer delivery contract treated
// as an external collaborator of the Raft core, plus two reference
// implementations: an in-process one for tests and self-loopback, and a
// line-delimited-JSON one for real processes over net.Conn.
package transport

import (
	"context"

	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/raft/codec"
)

// Transport is the per-peer send/receive contract: Send is best-effort
// (drops, duplicates and reorderings across different peers are all
// permissible), and envelopes from any single peer arrive on Inbox in
// the order that peer sent them. The core never inspects a Transport
// directly; only the Election & Replication Driver does.
type Transport interface {
	// Send attempts delivery to peer. A returned error is treated as
	// message loss -- the caller does not retry at this layer.
	Send(ctx context.Context, peer raft.ServerId, env codec.Envelope) error

	// Inbox delivers every envelope received from any peer, including
	// self-loopback sends. Order is preserved per originating peer;
	// envelopes from different peers may interleave in any order.
	Inbox() <-chan codec.Envelope

	// Close releases any resources (connections, goroutines) held by
	// the transport.
	Close() error
}
