package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/raft/codec"
)

// StreamTransport carries envelopes as newline-delimited JSON over a
// persistent net.Conn per peer. It keeps one writer goroutine-free
// critical section per connection (a mutex around Write) so a single
// handler's batch of outbound sends is flushed in the order produced,
// and one reader goroutine per connection feeding a shared inbox,
// preserving per-peer arrival order while letting different peers
// interleave freely.
type StreamTransport struct {
	self raft.ServerId
	ctx  context.Context
	stop context.CancelFunc

	mu    sync.Mutex
	conns map[raft.ServerId]*streamConn

	inbox chan codec.Envelope
}

type streamConn struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  net.Conn
}

// NewStreamTransport returns a StreamTransport for server self. Peer
// connections are added with AddPeer; inbound connections accepted by
// the embedding process should be handed to ServeConn.
func NewStreamTransport(self raft.ServerId) *StreamTransport {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreamTransport{
		self:  self,
		ctx:   ctx,
		stop:  cancel,
		conns: make(map[raft.ServerId]*streamConn),
		inbox: make(chan codec.Envelope, 256),
	}
}

// AddPeer registers an outbound connection to peer and starts reading
// envelopes that arrive on it into the shared inbox.
func (t *StreamTransport) AddPeer(peer raft.ServerId, conn net.Conn) {
	t.mu.Lock()
	t.conns[peer] = &streamConn{w: bufio.NewWriter(conn), c: conn}
	t.mu.Unlock()
	go t.readLoop(peer, conn)
}

// ServeConn starts reading envelopes from an inbound connection whose
// peer identity is not yet known to Send -- used when a peer dials us
// before we have dialed it. The connection becomes usable for Send as
// soon as the peer's identity is learned from the first envelope's Info.
func (t *StreamTransport) ServeConn(conn net.Conn) {
	go t.readLoop(0, conn)
}

func (t *StreamTransport) readLoop(expected raft.ServerId, conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		env, err := codec.Decode(scanner.Bytes())
		if err != nil {
			log.Warn().Err(err).Msg("transport: dropping malformed envelope")
			continue
		}
		if env.Info != nil {
			t.mu.Lock()
			if _, ok := t.conns[env.Info.From]; !ok {
				t.conns[env.Info.From] = &streamConn{w: bufio.NewWriter(conn), c: conn}
			}
			t.mu.Unlock()
		}
		select {
		case t.inbox <- env:
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *StreamTransport) Send(ctx context.Context, peer raft.ServerId, env codec.Envelope) error {
	t.mu.Lock()
	sc, ok := t.conns[peer]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("transport: no connection to peer %d", peer)
	}
	data, err := codec.Encode(env)
	if err != nil {
		return err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if _, err := sc.w.Write(data); err != nil {
		return err
	}
	if err := sc.w.WriteByte('\n'); err != nil {
		return err
	}
	return sc.w.Flush()
}

func (t *StreamTransport) Inbox() <-chan codec.Envelope {
	return t.inbox
}

func (t *StreamTransport) Close() error {
	t.stop()
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sc := range t.conns {
		sc.c.Close()
	}
	return nil
}
