package raft

// ProposeCommand appends command to the log at currentTerm and persists
// it. It is the in-process seam the client-facing command-submission
// endpoint calls; ProposeCommand itself does not wait
// for replication or commit -- the caller observes that via Status() or
// an ApplyFunc callback once commitIndex/lastApplied catch up.
func (s *Server) ProposeCommand(command []byte) (LogIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role.Kind != Leader {
		return 0, ErrNotLeader
	}

	s.raftLog = s.raftLog.AppendEntry(LogEntry{Term: s.currentTerm, Command: command})
	if err := s.persist(); err != nil {
		return 0, err
	}
	return s.raftLog.Length(), nil
}

// Heartbeat builds the AppendEntries request (heartbeat, or catch-up if
// the peer's NextIndex trails the log) to send to every peer.
// It is a no-op (empty Result) if this server is not currently Leader.
func (s *Server) Heartbeat() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role.Kind != Leader {
		return Result{}
	}
	var outbound []Outbound
	for _, p := range s.peers {
		outbound = append(outbound, s.heartbeatForLocked(p))
	}
	return Result{Outbound: outbound}
}

// RetryAppend builds an AppendEntries request to peer starting from its
// current NextIndex. It returns false if this server is not Leader or
// peer is not in its peer set. The driver does not call it: after a
// log-mismatch rejection, HandleAppendEntriesResponse decrements
// NextIndex and returns the retry request itself.
func (s *Server) RetryAppend(peer ServerId) (Outbound, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role.Kind != Leader {
		return Outbound{}, false
	}
	found := false
	for _, p := range s.peers {
		if p == peer {
			found = true
			break
		}
	}
	if !found {
		return Outbound{}, false
	}
	return s.heartbeatForLocked(peer), true
}

// ApplyCommitted hands every entry in (lastApplied, commitIndex] to
// apply, in order, advancing lastApplied as it goes. The driver calls
// this after any event that might have moved commitIndex forward.
func (s *Server) ApplyCommitted(apply ApplyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.lastApplied < s.commitIndex {
		s.lastApplied++
		entry, ok := s.raftLog.EntryAt(s.lastApplied)
		if !ok {
			// Should not happen: commitIndex is always <= log length.
			s.log.Error().Int64("index", int64(s.lastApplied)).Msg("commit index past end of log")
			break
		}
		apply(s.lastApplied, entry.Command)
	}
}
