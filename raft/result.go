package raft

// Result is what a handler produces: zero or more messages to send, and
// whether the driver should reset the election timer (any contact from
// a valid leader, or granting a vote, resets it).
type Result struct {
	Outbound           []Outbound
	ResetElectionTimer bool
}
