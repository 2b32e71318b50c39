package driver

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/raft/store"
	"github.com/coreraft/raftcore/transport"
)

// fastConfig shortens the timing parameters far below DefaultConfig so
// tests observe an election within a fraction of a second instead of
// the real 150-300ms window.
func fastConfig() Config {
	return Config{
		ElectionTimeoutMin: 20 * time.Millisecond,
		ElectionTimeoutMax: 40 * time.Millisecond,
		HeartbeatInterval:  5 * time.Millisecond,
	}
}

// TestSingleNodeBecomesLeader exercises scenario S1 through the actual
// timer-driven Driver rather than calling StartElection directly: a
// lone server's election timeout should fire and win a majority of one.
func TestSingleNodeBecomesLeader(t *testing.T) {
	srv, err := raft.NewServer(raft.Config{Self: 1}, store.NewMemStore(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	net := transport.NewNetwork([]raft.ServerId{1})
	d := New(srv, net.Transport(1), fastConfig(), func(raft.LogIndex, []byte) {}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		if srv.Status().Role == raft.Leader {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	status := srv.Status()
	if status.Role != raft.Leader {
		t.Fatalf("Role = %v, want Leader", status.Role)
	}
	if status.CurrentTerm < 1 {
		t.Fatalf("CurrentTerm = %d, want >= 1", status.CurrentTerm)
	}
}

// TestThreeNodeClusterElectsOneLeader runs three Drivers wired together
// through an in-process Network and checks that exactly one of them
// becomes Leader.
func TestThreeNodeClusterElectsOneLeader(t *testing.T) {
	ids := []raft.ServerId{1, 2, 3}
	net := transport.NewNetwork(ids)

	servers := make(map[raft.ServerId]*raft.Server)
	drivers := make([]*Driver, 0, len(ids))
	for _, id := range ids {
		var peers []raft.ServerId
		for _, other := range ids {
			if other != id {
				peers = append(peers, other)
			}
		}
		srv, err := raft.NewServer(raft.Config{Self: id, Peers: peers}, store.NewMemStore(), zerolog.Nop())
		if err != nil {
			t.Fatalf("NewServer(%d): %v", id, err)
		}
		servers[id] = srv
		drivers = append(drivers, New(srv, net.Transport(id), fastConfig(), func(raft.LogIndex, []byte) {}, zerolog.Nop()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, len(drivers))
	for _, d := range drivers {
		d := d
		go func() { done <- d.Run(ctx) }()
	}

	deadline := time.Now().Add(800 * time.Millisecond)
	for time.Now().Before(deadline) {
		leaders := 0
		for _, srv := range servers {
			if srv.Status().Role == raft.Leader {
				leaders++
			}
		}
		if leaders == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	for range drivers {
		<-done
	}

	leaders := 0
	for _, srv := range servers {
		if srv.Status().Role == raft.Leader {
			leaders++
		}
	}
	if leaders != 1 {
		t.Fatalf("expected exactly one leader, got %d", leaders)
	}
}
