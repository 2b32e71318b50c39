package raft

// RoleKind identifies which variant a Role value holds.
type RoleKind int

const (
	// Booting is the state a Server occupies before it has loaded its
	// persistent state; it is never re-entered.
	Booting RoleKind = iota
	Follower
	Candidate
	Leader
)

func (k RoleKind) String() string {
	switch k {
	case Booting:
		return "Booting"
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// VoteState is the tri-state tally a Candidate keeps per peer: a peer we
// have not yet heard back from is Pending, distinct from one that denied
// the vote, even though only Granted votes count toward quorum.
type VoteState int

const (
	Pending VoteState = iota
	Granted
	Denied
)

// CandidateState is the payload carried only while Role.Kind == Candidate:
// the outstanding vote tally for the election in progress.
type CandidateState struct {
	Votes map[ServerId]VoteState
}

func newCandidateState(peers []ServerId, self ServerId) *CandidateState {
	votes := make(map[ServerId]VoteState, len(peers)+1)
	votes[self] = Granted
	for _, p := range peers {
		if p != self {
			votes[p] = Pending
		}
	}
	return &CandidateState{Votes: votes}
}

// grantedCount returns how many peers (including self) have granted
// their vote so far.
func (c *CandidateState) grantedCount() int {
	n := 0
	for _, v := range c.Votes {
		if v == Granted {
			n++
		}
	}
	return n
}

// LeaderState is the payload carried only while Role.Kind == Leader: the
// per-peer replication bookkeeping. It does not exist on any other
// variant, which is what makes "leader-only fields present iff
// role==Leader" a structural invariant rather than a convention.
type LeaderState struct {
	NextIndex  map[ServerId]LogIndex
	MatchIndex map[ServerId]LogIndex
}

func newLeaderState(peers []ServerId, lastLogIndex LogIndex) *LeaderState {
	next := make(map[ServerId]LogIndex, len(peers))
	match := make(map[ServerId]LogIndex, len(peers))
	for _, p := range peers {
		next[p] = lastLogIndex + 1
		match[p] = 0
	}
	return &LeaderState{NextIndex: next, MatchIndex: match}
}

// Role is a tagged union over the four roles a Server can occupy.
// Candidate and Leader carry variant-only payloads (Candidate *
// LeaderState are both nil unless Kind matches), so code that needs
// "are we the leader" state cannot accidentally read stale Leader fields
// left over from a previous term the way a flattened struct would allow.
type Role struct {
	Kind      RoleKind
	Candidate *CandidateState
	Leader    *LeaderState
}

func RoleBooting() Role  { return Role{Kind: Booting} }
func RoleFollower() Role { return Role{Kind: Follower} }

func RoleCandidate(peers []ServerId, self ServerId) Role {
	return Role{Kind: Candidate, Candidate: newCandidateState(peers, self)}
}

func RoleLeader(peers []ServerId, lastLogIndex LogIndex) Role {
	return Role{Kind: Leader, Leader: newLeaderState(peers, lastLogIndex)}
}

func (r Role) String() string { return r.Kind.String() }
