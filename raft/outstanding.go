package raft

import "github.com/coreraft/raftcore/raft/codec"

// OutstandingEntry records one request this server sent and is awaiting
// a response for. LastIndexSent is only meaningful for AppendEntries
// requests: it is the index of the final entry included in that
// request (or the request's PrevLogIndex, if it carried no entries),
// used to advance MatchIndex on a successful response without
// re-deriving it from the (possibly since-mutated) log.
type OutstandingEntry struct {
	Peer          ServerId
	Type          codec.MessageType
	LastIndexSent LogIndex
}

// Outbound is a message a handler wants sent to peer To. Envelope is
// unstamped; the sending driver supplies the final Info.
//
// For a request (InReplyTo == nil), the driver assigns a fresh
// MessageId from the Server's counter (NextMessageId) and, if Track is
// non-nil, records it in the Server's outstanding table before sending.
//
// For a response (InReplyTo != nil), the driver stamps Info.Id with
// *InReplyTo -- the id of the request being answered -- rather than
// assigning a new one, so the original requester's outstanding lookup
// by id succeeds; that lookup also requires the response to come from
// the peer the request was sent to.
type Outbound struct {
	To        ServerId
	Envelope  codec.Envelope
	InReplyTo *MessageId
	Track     *OutstandingEntry
}

func reply(to ServerId, replyToId MessageId, env codec.Envelope) Outbound {
	id := replyToId
	return Outbound{To: to, Envelope: env, InReplyTo: &id}
}

func request(to ServerId, env codec.Envelope, track OutstandingEntry) Outbound {
	return Outbound{To: to, Envelope: env, Track: &track}
}

// takeOutstanding removes and returns the outstanding entry for id, if
// any, along with whether it was present and addressed to peer from.
func (s *Server) takeOutstanding(id MessageId, from ServerId) (OutstandingEntry, bool) {
	entry, ok := s.outstanding[id]
	if !ok {
		return OutstandingEntry{}, false
	}
	if entry.Peer != from {
		// UnexpectedResponse: claims to answer a request we never sent
		// to this peer. Leave the real outstanding entry alone and
		// drop.
		return OutstandingEntry{}, false
	}
	delete(s.outstanding, id)
	return entry, true
}

// NextMessageId returns the next value in this server's own outbound,
// per-sender monotonic MessageId sequence.
func (s *Server) NextMessageId() MessageId {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessageId++
	return s.nextMessageId
}

// RegisterOutstanding records that a request stamped with id was sent,
// per entry, so a future response can be correlated back to it. Called
// by the sending driver right after it assigns a request Outbound its
// id, before stamping and sending it.
func (s *Server) RegisterOutstanding(id MessageId, entry OutstandingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outstanding[id] = entry
}

// clearOutstanding discards every outstanding request. Called on
// step-down (higher term observed) since those requests' responses, if
// they ever arrive, are no longer actionable.
func (s *Server) clearOutstanding() {
	s.outstanding = make(map[MessageId]OutstandingEntry)
}
