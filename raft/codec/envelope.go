// Package codec implements the self-describing wire envelope: four RPC
// shapes, each argument independently JSON-encoded and embedded as an
// escaped string inside the outer envelope.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/coreraft/raftcore/raft/types"
)

// MessageType names one of the four RPC shapes.
type MessageType string

const (
	AppendEntries         MessageType = "AppendEntries"
	AppendEntriesResponse MessageType = "AppendEntriesResponse"
	RequestVote           MessageType = "RequestVote"
	RequestVoteResponse   MessageType = "RequestVoteResponse"
)

// IsRequest is true for the two non-Response message types.
func (t MessageType) IsRequest() bool {
	return t == AppendEntries || t == RequestVote
}

// IsResponse is true for the two Response message types.
func (t MessageType) IsResponse() bool {
	return t == AppendEntriesResponse || t == RequestVoteResponse
}

// Fixed argument key names.
const (
	argTerm         = "term"
	argLeaderId     = "leaderId"
	argPrevLogIndex = "prevLogIndex"
	argPrevLogTerm  = "prevLogTerm"
	argEntries      = "entries"
	argLeaderCommit = "leaderCommit"
	argSuccess      = "success"
	argCandidateId  = "candidateId"
	argLastLogIndex = "lastLogIndex"
	argLastLogTerm  = "lastLogTerm"
	argVoteGranted  = "voteGranted"
)

// Info stamps an envelope with the sender and a per-sender monotonic
// MessageId, correlating responses with requests. It is absent on a
// freshly constructed envelope and supplied by the sending driver.
type Info struct {
	From types.ServerId  `json:"_msgFrom"`
	Id   types.MessageId `json:"_msgId"`
}

// namedArg is one (name, encoded-blob) pair. Its JSON form is the
// 2-element array ["name", "<json text, escaped as a string>"] this
// wire format requires: Blob already holds valid JSON text, and marshaling it as a
// Go string lets encoding/json perform the escaping that produces the
// double-encoded shape.
type namedArg struct {
	Name string
	Blob string
}

func (a namedArg) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{a.Name, a.Blob})
}

func (a *namedArg) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	a.Name, a.Blob = pair[0], pair[1]
	return nil
}

// Envelope is the wire shape:
//
//	{ "_msgType": ..., "_msgArgs": [["name", "<blob>"], ...], "_msgInfo": {...} }
type Envelope struct {
	Type MessageType `json:"_msgType"`
	Args []namedArg  `json:"_msgArgs"`
	Info *Info       `json:"_msgInfo,omitempty"`
}

// Stamp returns a copy of e with Info set, assigning the envelope to
// sender from with message id.
func (e Envelope) Stamp(from types.ServerId, id types.MessageId) Envelope {
	e.Info = &Info{From: from, Id: id}
	return e
}

// Encode marshals the envelope to its wire JSON form.
func Encode(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("codec: encode envelope: %w", err)
	}
	return data, nil
}

// Decode unmarshals the wire JSON form into an Envelope. It only
// validates the outer shape; per-argument validation happens lazily
// when a handler asks for a specific argument -- missing/undecodable
// args are absent, not fatal.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("codec: decode envelope: %w", err)
	}
	return e, nil
}

// setArg encodes value as its own JSON document and appends it as a
// named argument. Unknown ordering among setArg calls is fine; order is
// preserved in Args but readers key off Name, not position.
func setArg(args []namedArg, name string, value interface{}) []namedArg {
	blob, err := json.Marshal(value)
	if err != nil {
		// Every value passed by this package's own constructors is
		// trivially encodable; a failure here is a programming error.
		panic(fmt.Sprintf("codec: arg %q not encodable: %v", name, err))
	}
	return append(args, namedArg{Name: name, Blob: string(blob)})
}

// getArg decodes the named argument into target. It returns false
// (without modifying target) if the key is missing or the blob does not
// decode as the expected type -- the MalformedMessage case, handled by
// the caller dropping the message silently.
func getArg(args []namedArg, name string, target interface{}) bool {
	for _, a := range args {
		if a.Name != name {
			continue
		}
		if err := json.Unmarshal([]byte(a.Blob), target); err != nil {
			return false
		}
		return true
	}
	return false
}
