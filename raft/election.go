package raft

import "github.com/coreraft/raftcore/raft/codec"

// StartElection implements the Follower->Candidate and
// Candidate->Candidate transitions of the role state machine: the
// election timer elapsed with no valid leader contact or granted vote.
// It increments currentTerm, votes for self, persists, and returns
// RequestVote envelopes to send to every peer -- or, for a single-node
// cluster, an immediate win (the self-vote is already a majority).
//
// The driver does not invoke this while role == Leader: it skips the
// election timeout in that role. Called on a Leader, StartElection
// returns an empty Result and changes nothing.
func (s *Server) StartElection() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role.Kind == Leader {
		return Result{}, nil
	}

	s.currentTerm++
	self := s.id
	s.votedFor = &self
	s.clearOutstanding()
	s.role = RoleCandidate(s.peers, s.id)

	if err := s.persist(); err != nil {
		return Result{}, err
	}

	s.log.Info().Int64("term", int64(s.currentTerm)).Msg("starting election")

	if s.role.Candidate.grantedCount() >= quorum(s.clusterSize()) {
		// Single-node (or otherwise already-satisfied) cluster: self
		// vote alone is a majority, matches scenario S1.
		return s.becomeLeaderLocked(), nil
	}

	lastIdx := s.raftLog.Length()
	lastTerm := s.raftLog.LastTerm()

	var outbound []Outbound
	for _, p := range s.peers {
		env := codec.NewRequestVote(s.currentTerm, s.id, lastIdx, lastTerm)
		outbound = append(outbound, request(p, env, OutstandingEntry{
			Peer: p,
			Type: codec.RequestVote,
		}))
	}
	return Result{Outbound: outbound, ResetElectionTimer: true}, nil
}
