package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/raft/codec"
)

// Network wires together a fixed set of in-process peers, for tests and
// for single-binary clusters. Each member's LoopTransport.Send puts the
// envelope straight onto the target member's buffered inbox channel
// without blocking (a full inbox drops it), so a slow reader cannot
// block the sender -- matching the "best-effort, delivery-preserving per
// peer" contract without needing real sockets.
type Network struct {
	mu    sync.Mutex
	boxes map[raft.ServerId]chan codec.Envelope
}

// NewNetwork returns a Network with an inbox pre-created for every id in
// members (including, typically, every server's own id -- self-loopback
// is just another entry in this map).
func NewNetwork(members []raft.ServerId) *Network {
	n := &Network{boxes: make(map[raft.ServerId]chan codec.Envelope)}
	for _, id := range members {
		n.boxes[id] = make(chan codec.Envelope, 256)
	}
	return n
}

// Transport returns the Transport view for member id.
func (n *Network) Transport(id raft.ServerId) *LoopTransport {
	return &LoopTransport{network: n, self: id}
}

// LoopTransport is one member's view of a Network.
type LoopTransport struct {
	network *Network
	self    raft.ServerId
	closed  bool
	mu      sync.Mutex
}

func (t *LoopTransport) Send(ctx context.Context, peer raft.ServerId, env codec.Envelope) error {
	t.network.mu.Lock()
	box, ok := t.network.boxes[peer]
	t.network.mu.Unlock()
	if !ok {
		return fmt.Errorf("transport: unknown peer %d", peer)
	}
	select {
	case box <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Best-effort: a full inbox means the peer is unreachable for
		// now, which is indistinguishable from message loss.
		return fmt.Errorf("transport: peer %d inbox full, dropping", peer)
	}
}

func (t *LoopTransport) Inbox() <-chan codec.Envelope {
	t.network.mu.Lock()
	defer t.network.mu.Unlock()
	return t.network.boxes[t.self]
}

func (t *LoopTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
