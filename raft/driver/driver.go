package driver

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/transport"
)

// Driver owns the timers and the Transport for one Server, converting
// elapsed time into election/heartbeat RPCs and inbound envelopes into
// Server.Dispatch calls, all on a single goroutine -- exactly one
// handler transforms a given Server's state at a time, without an
// explicit lock at this layer (Server still takes its own mutex, as a
// second line of defense for status reads).
type Driver struct {
	server    *raft.Server
	transport transport.Transport
	cfg       Config
	apply     raft.ApplyFunc
	log       zerolog.Logger
	rng       *rand.Rand
}

// New constructs a Driver. apply is the external state machine hook
// that committed entries are handed to, in order.
func New(server *raft.Server, t transport.Transport, cfg Config, apply raft.ApplyFunc, logger zerolog.Logger) *Driver {
	return &Driver{
		server:    server,
		transport: t,
		cfg:       cfg,
		apply:     apply,
		log:       logger.With().Int64("server_id", int64(server.Id())).Logger(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano() + int64(server.Id()))),
	}
}

func (d *Driver) randomElectionTimeout() time.Duration {
	lo, hi := d.cfg.ElectionTimeoutMin, d.cfg.ElectionTimeoutMax
	if hi <= lo {
		return lo
	}
	span := hi - lo
	return lo + time.Duration(d.rng.Int63n(int64(span)))
}

// Run drives the Server until ctx is cancelled or a persistence failure
// occurs. A persistence failure is returned as an error: the embedding
// process should treat this as fatal and exit rather than continue
// running with an in-memory state that has outrun durable storage.
func (d *Driver) Run(ctx context.Context) error {
	electionTimer := time.NewTimer(d.randomElectionTimeout())
	defer electionTimer.Stop()

	var heartbeat *time.Ticker
	var heartbeatC <-chan time.Time
	defer func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
	}()

	syncHeartbeat := func() {
		if d.server.Status().Role == raft.Leader {
			if heartbeat == nil {
				heartbeat = time.NewTicker(d.cfg.HeartbeatInterval)
				heartbeatC = heartbeat.C
			}
		} else if heartbeat != nil {
			heartbeat.Stop()
			heartbeat = nil
			heartbeatC = nil
		}
	}

	inbox := d.transport.Inbox()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case env, ok := <-inbox:
			if !ok {
				return nil
			}
			result, err := d.server.Dispatch(env)
			if err != nil {
				return err
			}
			d.sendAll(ctx, result.Outbound)
			if result.ResetElectionTimer {
				resetTimer(electionTimer, d.randomElectionTimeout())
			}
			d.server.ApplyCommitted(d.apply)
			syncHeartbeat()

		case <-electionTimer.C:
			if d.server.Status().Role != raft.Leader {
				result, err := d.server.StartElection()
				if err != nil {
					return err
				}
				d.sendAll(ctx, result.Outbound)
				d.server.ApplyCommitted(d.apply)
			}
			resetTimer(electionTimer, d.randomElectionTimeout())
			syncHeartbeat()

		case <-heartbeatC:
			result := d.server.Heartbeat()
			d.sendAll(ctx, result.Outbound)
		}
	}
}

// sendAll stamps and transmits every outbound message a handler
// produced, in the order produced.
func (d *Driver) sendAll(ctx context.Context, outbound []raft.Outbound) {
	for _, ob := range outbound {
		d.sendOne(ctx, ob)
	}
}

func (d *Driver) sendOne(ctx context.Context, ob raft.Outbound) {
	var id raft.MessageId
	if ob.InReplyTo != nil {
		id = *ob.InReplyTo
	} else {
		id = d.server.NextMessageId()
		if ob.Track != nil {
			d.server.RegisterOutstanding(id, *ob.Track)
		}
	}
	env := ob.Envelope.Stamp(d.server.Id(), id)
	if err := d.transport.Send(ctx, ob.To, env); err != nil {
		// Treated as message loss, no retry at this layer -- periodic
		// heartbeats and nextIndex-driven resends provide eventual retry.
		d.log.Debug().Err(err).Int64("peer", int64(ob.To)).Msg("send failed, treating as loss")
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
