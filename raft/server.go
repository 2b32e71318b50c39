package raft

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ApplyFunc hands a committed entry's command to the external state
// machine. It is called in commit order, once per index, and must not
// block indefinitely -- it runs on the single logical thread that also
// processes inbound messages and timers.
type ApplyFunc func(index LogIndex, command []byte)

// Config carries the fixed, non-reconfigurable identity of a Server:
// its own id and the full peer set (excluding itself).
type Config struct {
	Self  ServerId
	Peers []ServerId
}

// Server is one participant's Raft state. All mutation happens
// under mu; callers (normally just the Election & Replication Driver)
// must serialize handler invocations, but mu is kept regardless
// as a defense against a second goroutine (e.g. a status endpoint)
// reading state concurrently.
type Server struct {
	mu sync.Mutex

	id    ServerId
	peers []ServerId
	store Store
	log   zerolog.Logger

	role        Role
	currentTerm Term
	votedFor    *ServerId
	raftLog     *Log

	commitIndex LogIndex
	lastApplied LogIndex

	outstanding   map[MessageId]OutstandingEntry
	nextMessageId MessageId
}

// NewServer constructs a Server in role Booting and immediately loads
// persistent state from store, transitioning to Follower -- the only
// transition out of Booting a Server ever makes.
func NewServer(cfg Config, store Store, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		id:          cfg.Self,
		peers:       append([]ServerId(nil), cfg.Peers...),
		store:       store,
		log:         logger.With().Int64("server_id", int64(cfg.Self)).Logger(),
		role:        RoleBooting(),
		commitIndex: 0,
		lastApplied: 0,
		outstanding: make(map[MessageId]OutstandingEntry),
	}

	triple, err := store.Read()
	if err != nil {
		return nil, fmt.Errorf("raft: load persistent state: %w", err)
	}
	s.currentTerm = triple.CurrentTerm
	s.votedFor = triple.VotedFor
	s.raftLog = triple.Log
	if s.raftLog == nil {
		s.raftLog = NewLog()
	}
	s.role = RoleFollower()

	s.log.Info().
		Int64("term", int64(s.currentTerm)).
		Int64("log_length", int64(s.raftLog.Length())).
		Msg("loaded persistent state, starting as follower")

	return s, nil
}

// Id returns this server's own ServerId.
func (s *Server) Id() ServerId { return s.id }

// Peers returns the configured peer set (excluding self), in a fresh
// slice the caller may not mutate the Server's copy through.
func (s *Server) Peers() []ServerId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ServerId(nil), s.peers...)
}

// clusterSize is peers (excluding self) plus self.
func (s *Server) clusterSize() int { return len(s.peers) + 1 }

// quorum is the smallest count that is a strict majority of the cluster.
func quorum(clusterSize int) int { return clusterSize/2 + 1 }

func (s *Server) persist() error {
	triple := PersistentTriple{
		CurrentTerm: s.currentTerm,
		VotedFor:    s.votedFor,
		Log:         s.raftLog,
	}
	if err := s.store.Write(triple); err != nil {
		s.log.Error().Err(err).Msg("persistence failure, state transition aborted")
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// stepDownLocked transitions to Follower, clearing any leader/candidate
// payload and every outstanding request this server had in flight. It
// does not itself persist -- callers that also changed currentTerm or
// votedFor are responsible for calling persist() once, after this.
func (s *Server) stepDownLocked() {
	if s.role.Kind == Follower {
		return
	}
	s.log.Info().Str("from_role", s.role.Kind.String()).Msg("stepping down to follower")
	s.role = RoleFollower()
	s.clearOutstanding()
}

// applyPrelude implements the common prelude shared by every handler:
// observing a term strictly greater than currentTerm forces step-down,
// term adoption, and a vote reset, persisted before any type-specific
// handling proceeds.
// It returns whether a step-down occurred (so callers can decide whether
// a redundant stepDownLocked is still needed for their own type-specific
// rule).
func (s *Server) applyPrelude(msgTerm Term) (steppedDown bool, err error) {
	if msgTerm <= s.currentTerm {
		return false, nil
	}
	s.log.Info().
		Int64("old_term", int64(s.currentTerm)).
		Int64("new_term", int64(msgTerm)).
		Msg("observed higher term, stepping down")
	s.currentTerm = msgTerm
	s.votedFor = nil
	s.stepDownLocked()
	if err := s.persist(); err != nil {
		return true, err
	}
	return true, nil
}

// isLogUpToDateLocked implements the RequestVote up-to-date rule:
// candidate's log is at least as up-to-date as ours.
func (s *Server) isLogUpToDateLocked(lastLogTerm Term, lastLogIndex LogIndex) bool {
	ourLastTerm := s.raftLog.LastTerm()
	ourLastIndex := s.raftLog.Length()
	if lastLogTerm != ourLastTerm {
		return lastLogTerm > ourLastTerm
	}
	return lastLogIndex >= ourLastIndex
}

// Snapshot is a read-only view of a Server's state, for diagnostics
// (internal/httpapi) and tests. It is not part of the core decision
// logic.
type Snapshot struct {
	Id          ServerId
	Role        RoleKind
	CurrentTerm Term
	VotedFor    *ServerId
	LogLength   LogIndex
	CommitIndex LogIndex
	LastApplied LogIndex
}

// Status returns a Snapshot of the Server's current state.
func (s *Server) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Id:          s.id,
		Role:        s.role.Kind,
		CurrentTerm: s.currentTerm,
		VotedFor:    s.votedFor,
		LogLength:   s.raftLog.Length(),
		CommitIndex: s.commitIndex,
		LastApplied: s.lastApplied,
	}
}

// LogEntries returns every entry in the log paired with its index, for
// diagnostics (internal/httpapi). It is a snapshot copy, safe to range
// over after the call returns even as the Server continues mutating.
func (s *Server) LogEntries() []IndexedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raftLog.WithIndices()
}
