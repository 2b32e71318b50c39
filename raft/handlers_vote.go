package raft

import "github.com/coreraft/raftcore/raft/codec"

// HandleRequestVote handles an incoming RequestVote RPC.
func (s *Server) HandleRequestVote(from ServerId, replyId MessageId, args codec.RequestVoteArgs) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.applyPrelude(args.Term); err != nil {
		return Result{}, err
	}

	grant := args.Term >= s.currentTerm &&
		(s.votedFor == nil || *s.votedFor == args.CandidateId) &&
		s.isLogUpToDateLocked(args.LastLogTerm, args.LastLogIndex)

	result := Result{}
	if grant {
		s.votedFor = &args.CandidateId
		if err := s.persist(); err != nil {
			return Result{}, err
		}
		result.ResetElectionTimer = true
	}

	env := codec.NewRequestVoteResponse(s.currentTerm, grant)
	result.Outbound = []Outbound{reply(from, replyId, env)}
	return result, nil
}

// HandleRequestVoteResponse handles a RequestVoteResponse (Candidate only).
func (s *Server) HandleRequestVoteResponse(from ServerId, replyId MessageId, args codec.RequestVoteResponseArgs) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.applyPrelude(args.Term); err != nil {
		return Result{}, err
	}

	entry, ok := s.takeOutstanding(replyId, from)
	if !ok {
		return Result{}, nil
	}
	if s.role.Kind != Candidate || args.Term != s.currentTerm {
		return Result{}, nil
	}

	cand := s.role.Candidate
	if args.VoteGranted {
		cand.Votes[entry.Peer] = Granted
	} else {
		cand.Votes[entry.Peer] = Denied
	}

	if cand.grantedCount() < quorum(s.clusterSize()) {
		return Result{}, nil
	}

	return s.becomeLeaderLocked(), nil
}

// becomeLeaderLocked transitions a Candidate with a winning tally to
// Leader: initializes per-peer replication bookkeeping and emits an
// immediate empty AppendEntries (heartbeat) to every peer.
func (s *Server) becomeLeaderLocked() Result {
	s.log.Info().Int64("term", int64(s.currentTerm)).Msg("election won, becoming leader")
	s.role = RoleLeader(s.peers, s.raftLog.Length())

	var outbound []Outbound
	for _, p := range s.peers {
		outbound = append(outbound, s.heartbeatForLocked(p))
	}
	return Result{Outbound: outbound}
}

// heartbeatForLocked builds the AppendEntries request (with whatever
// entries peer needs, which is empty immediately after an election) to
// send to peer, and the outstanding-table entry to track it by.
func (s *Server) heartbeatForLocked(peer ServerId) Outbound {
	leader := s.role.Leader
	nextIdx := leader.NextIndex[peer]
	prevIdx := nextIdx - 1
	prevTerm, _ := s.raftLog.TermAt(prevIdx)

	var entries []IndexedEntry
	for i := nextIdx; i <= s.raftLog.Length(); i++ {
		e, _ := s.raftLog.EntryAt(i)
		entries = append(entries, IndexedEntry{Index: i, Entry: e})
	}
	lastSent := prevIdx
	if len(entries) > 0 {
		lastSent = entries[len(entries)-1].Index
	}

	env := codec.NewAppendEntries(s.currentTerm, s.id, prevIdx, prevTerm, entries, s.commitIndex)
	return request(peer, env, OutstandingEntry{
		Peer:          peer,
		Type:          codec.AppendEntries,
		LastIndexSent: lastSent,
	})
}
