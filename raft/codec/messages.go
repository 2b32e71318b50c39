package codec

import "github.com/coreraft/raftcore/raft/types"

// AppendEntriesArgs is the decoded argument set of an AppendEntries
// request.
type AppendEntriesArgs struct {
	Term         types.Term
	LeaderId     types.ServerId
	PrevLogIndex types.LogIndex
	PrevLogTerm  types.Term
	Entries      []types.IndexedEntry
	LeaderCommit types.LogIndex
}

// NewAppendEntries builds an unstamped AppendEntries request envelope.
func NewAppendEntries(
	term types.Term,
	leaderId types.ServerId,
	prevLogIndex types.LogIndex,
	prevLogTerm types.Term,
	entries []types.IndexedEntry,
	leaderCommit types.LogIndex,
) Envelope {
	var args []namedArg
	args = setArg(args, argTerm, term)
	args = setArg(args, argLeaderId, leaderId)
	args = setArg(args, argPrevLogIndex, prevLogIndex)
	args = setArg(args, argPrevLogTerm, prevLogTerm)
	args = setArg(args, argEntries, encodeEntries(entries))
	args = setArg(args, argLeaderCommit, leaderCommit)
	return Envelope{Type: AppendEntries, Args: args}
}

// DecodeAppendEntries extracts AppendEntriesArgs from e. ok is false if
// e is not an AppendEntries envelope or any required argument is
// missing/malformed.
func DecodeAppendEntries(e Envelope) (AppendEntriesArgs, bool) {
	if e.Type != AppendEntries {
		return AppendEntriesArgs{}, false
	}
	var a AppendEntriesArgs
	var wireEntriesList []wireEntry
	ok := getArg(e.Args, argTerm, &a.Term) &&
		getArg(e.Args, argLeaderId, &a.LeaderId) &&
		getArg(e.Args, argPrevLogIndex, &a.PrevLogIndex) &&
		getArg(e.Args, argPrevLogTerm, &a.PrevLogTerm) &&
		getArg(e.Args, argEntries, &wireEntriesList) &&
		getArg(e.Args, argLeaderCommit, &a.LeaderCommit)
	if !ok {
		return AppendEntriesArgs{}, false
	}
	a.Entries = decodeEntries(wireEntriesList)
	return a, true
}

// AppendEntriesResponseArgs is the decoded argument set of an
// AppendEntriesResponse.
type AppendEntriesResponseArgs struct {
	Term    types.Term
	Success bool
}

// NewAppendEntriesResponse builds an unstamped AppendEntriesResponse
// envelope.
func NewAppendEntriesResponse(term types.Term, success bool) Envelope {
	var args []namedArg
	args = setArg(args, argTerm, term)
	args = setArg(args, argSuccess, success)
	return Envelope{Type: AppendEntriesResponse, Args: args}
}

// DecodeAppendEntriesResponse extracts AppendEntriesResponseArgs from e.
func DecodeAppendEntriesResponse(e Envelope) (AppendEntriesResponseArgs, bool) {
	if e.Type != AppendEntriesResponse {
		return AppendEntriesResponseArgs{}, false
	}
	var a AppendEntriesResponseArgs
	ok := getArg(e.Args, argTerm, &a.Term) && getArg(e.Args, argSuccess, &a.Success)
	if !ok {
		return AppendEntriesResponseArgs{}, false
	}
	return a, true
}

// RequestVoteArgs is the decoded argument set of a RequestVote request.
type RequestVoteArgs struct {
	Term         types.Term
	CandidateId  types.ServerId
	LastLogIndex types.LogIndex
	LastLogTerm  types.Term
}

// NewRequestVote builds an unstamped RequestVote request envelope.
func NewRequestVote(
	term types.Term,
	candidateId types.ServerId,
	lastLogIndex types.LogIndex,
	lastLogTerm types.Term,
) Envelope {
	var args []namedArg
	args = setArg(args, argTerm, term)
	args = setArg(args, argCandidateId, candidateId)
	args = setArg(args, argLastLogIndex, lastLogIndex)
	args = setArg(args, argLastLogTerm, lastLogTerm)
	return Envelope{Type: RequestVote, Args: args}
}

// DecodeRequestVote extracts RequestVoteArgs from e.
func DecodeRequestVote(e Envelope) (RequestVoteArgs, bool) {
	if e.Type != RequestVote {
		return RequestVoteArgs{}, false
	}
	var a RequestVoteArgs
	ok := getArg(e.Args, argTerm, &a.Term) &&
		getArg(e.Args, argCandidateId, &a.CandidateId) &&
		getArg(e.Args, argLastLogIndex, &a.LastLogIndex) &&
		getArg(e.Args, argLastLogTerm, &a.LastLogTerm)
	if !ok {
		return RequestVoteArgs{}, false
	}
	return a, true
}

// RequestVoteResponseArgs is the decoded argument set of a
// RequestVoteResponse.
type RequestVoteResponseArgs struct {
	Term        types.Term
	VoteGranted bool
}

// NewRequestVoteResponse builds an unstamped RequestVoteResponse
// envelope.
func NewRequestVoteResponse(term types.Term, voteGranted bool) Envelope {
	var args []namedArg
	args = setArg(args, argTerm, term)
	args = setArg(args, argVoteGranted, voteGranted)
	return Envelope{Type: RequestVoteResponse, Args: args}
}

// DecodeRequestVoteResponse extracts RequestVoteResponseArgs from e.
func DecodeRequestVoteResponse(e Envelope) (RequestVoteResponseArgs, bool) {
	if e.Type != RequestVoteResponse {
		return RequestVoteResponseArgs{}, false
	}
	var a RequestVoteResponseArgs
	ok := getArg(e.Args, argTerm, &a.Term) && getArg(e.Args, argVoteGranted, &a.VoteGranted)
	if !ok {
		return RequestVoteResponseArgs{}, false
	}
	return a, true
}
