package raft

import "github.com/coreraft/raftcore/raft/codec"

// HandleAppendEntries handles an incoming AppendEntries RPC.
// replyId is the MessageId of the inbound request, echoed into the
// response's Info so the leader's outstanding lookup succeeds.
func (s *Server) HandleAppendEntries(from ServerId, replyId MessageId, args codec.AppendEntriesArgs) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.applyPrelude(args.Term); err != nil {
		return Result{}, err
	}

	// Step 1: stale leader.
	if args.Term < s.currentTerm {
		env := codec.NewAppendEntriesResponse(s.currentTerm, false)
		return Result{Outbound: []Outbound{reply(from, replyId, env)}}, nil
	}

	// Step 2: a current-term leader has emerged; a Candidate defers to it.
	if s.role.Kind == Candidate {
		s.stepDownLocked()
	}

	// Step 3: valid leader contact resets the election timer.
	resetTimer := true

	// Step 4: log-matching check.
	if args.PrevLogIndex > 0 {
		term, ok := s.raftLog.TermAt(args.PrevLogIndex)
		if !ok || term != args.PrevLogTerm {
			env := codec.NewAppendEntriesResponse(s.currentTerm, false)
			return Result{
				Outbound:           []Outbound{reply(from, replyId, env)},
				ResetElectionTimer: resetTimer,
			}, nil
		}
	}

	// Step 5: merge entries.
	dirty := false
	if len(args.Entries) > 0 {
		merged := ReconcileEntries(s.raftLog, args.Entries)
		if merged.Length() != s.raftLog.Length() || !sameTail(s.raftLog, merged, args.Entries) {
			dirty = true
		}
		s.raftLog = merged
	}

	// Step 6: advance commitIndex (volatile, never persisted).
	if args.LeaderCommit > s.commitIndex {
		newCommit := args.LeaderCommit
		if newCommit > s.raftLog.Length() {
			newCommit = s.raftLog.Length()
		}
		s.commitIndex = newCommit
	}

	// Step 7: persist if term/votedFor/log changed, then reply success.
	if dirty {
		if err := s.persist(); err != nil {
			return Result{}, err
		}
	}

	env := codec.NewAppendEntriesResponse(s.currentTerm, true)
	return Result{
		Outbound:           []Outbound{reply(from, replyId, env)},
		ResetElectionTimer: resetTimer,
	}, nil
}

// sameTail reports whether applying entries to base would be a no-op
// (every entry already present with a matching term), used only to avoid
// a redundant persistence write when a duplicate AppendEntries arrives.
func sameTail(base, merged *Log, entries []IndexedEntry) bool {
	if base.Length() != merged.Length() {
		return false
	}
	for _, ie := range entries {
		e, ok := base.EntryAt(ie.Index)
		if !ok || e.Term != ie.Entry.Term {
			return false
		}
	}
	return true
}

// HandleAppendEntriesResponse handles an AppendEntriesResponse (Leader only). from/replyId identify the response envelope's
// sender and the id it echoed back, used to find the matching
// outstanding request.
func (s *Server) HandleAppendEntriesResponse(from ServerId, replyId MessageId, args codec.AppendEntriesResponseArgs) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.applyPrelude(args.Term); err != nil {
		return Result{}, err
	}

	entry, ok := s.takeOutstanding(replyId, from)
	if !ok {
		return Result{}, nil // UnexpectedResponse: drop silently.
	}
	if s.role.Kind != Leader || args.Term < s.currentTerm {
		return Result{}, nil
	}
	leader := s.role.Leader

	if args.Success {
		if entry.LastIndexSent > leader.MatchIndex[entry.Peer] {
			leader.MatchIndex[entry.Peer] = entry.LastIndexSent
		}
		leader.NextIndex[entry.Peer] = leader.MatchIndex[entry.Peer] + 1
		s.advanceCommitIndexLocked()
		return Result{}, nil
	}

	// success=false: back off by one and immediately retry with the
	// earlier prefix. Iterative rather than recursive, so a long backoff
	// chase never grows the call stack against a trailing follower.
	next := leader.NextIndex[entry.Peer] - 1
	if next < 1 {
		next = 1
	}
	leader.NextIndex[entry.Peer] = next
	return Result{Outbound: []Outbound{s.heartbeatForLocked(entry.Peer)}}, nil
}

// advanceCommitIndexLocked implements §4.4's commit-safety rule: a
// leader only ever advances commitIndex to an index N whose entry was
// proposed in currentTerm, and only once a majority (including self)
// has matchIndex >= N. Earlier-term entries become committed only
// indirectly, once some later current-term entry is.
func (s *Server) advanceCommitIndexLocked() {
	if s.role.Kind != Leader {
		return
	}
	leader := s.role.Leader
	need := quorum(s.clusterSize())

	for n := s.raftLog.Length(); n > s.commitIndex; n-- {
		entry, ok := s.raftLog.EntryAt(n)
		if !ok || entry.Term != s.currentTerm {
			continue
		}
		count := 1 // self
		for _, m := range leader.MatchIndex {
			if m >= n {
				count++
			}
		}
		if count >= need {
			s.log.Info().Int64("commit_index", int64(n)).Msg("advanced commit index")
			s.commitIndex = n
			return
		}
	}
}
