package codec

import (
	"testing"

	"github.com/coreraft/raftcore/raft/types"
)

func roundTrip(t *testing.T, env Envelope) Envelope {
	t.Helper()
	data, err := Encode(env)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return out
}

func TestAppendEntriesRoundTrip(t *testing.T) {
	entries := []types.IndexedEntry{
		{Index: 1, Entry: types.LogEntry{Term: 2, Command: []byte("x")}},
		{Index: 2, Entry: types.LogEntry{Term: 2, Command: []byte("y")}},
	}
	env := NewAppendEntries(2, 1, 0, 0, entries, 0).Stamp(1, 5)
	out := roundTrip(t, env)

	if !out.Type.IsRequest() {
		t.Fatalf("AppendEntries should be a request")
	}
	if out.Info.From != 1 || out.Info.Id != 5 {
		t.Fatalf("Info = %+v, want from=1 id=5", out.Info)
	}
	args, ok := DecodeAppendEntries(out)
	if !ok {
		t.Fatalf("DecodeAppendEntries: not ok")
	}
	if args.Term != 2 || args.LeaderId != 1 {
		t.Fatalf("args = %+v", args)
	}
	if len(args.Entries) != 2 || string(args.Entries[1].Entry.Command) != "y" {
		t.Fatalf("entries round-trip mismatch: %+v", args.Entries)
	}
}

func TestAppendEntriesResponseRoundTrip(t *testing.T) {
	env := NewAppendEntriesResponse(7, true).Stamp(2, 9)
	out := roundTrip(t, env)
	if !out.Type.IsResponse() {
		t.Fatalf("AppendEntriesResponse should be a response")
	}
	args, ok := DecodeAppendEntriesResponse(out)
	if !ok || args.Term != 7 || !args.Success {
		t.Fatalf("args = %+v, ok=%v", args, ok)
	}
}

func TestRequestVoteRoundTrip(t *testing.T) {
	env := NewRequestVote(3, 4, 10, 2).Stamp(4, 1)
	out := roundTrip(t, env)
	args, ok := DecodeRequestVote(out)
	if !ok {
		t.Fatalf("DecodeRequestVote: not ok")
	}
	if args.Term != 3 || args.CandidateId != 4 || args.LastLogIndex != 10 || args.LastLogTerm != 2 {
		t.Fatalf("args = %+v", args)
	}
}

func TestRequestVoteResponseRoundTrip(t *testing.T) {
	env := NewRequestVoteResponse(3, false).Stamp(5, 2)
	out := roundTrip(t, env)
	args, ok := DecodeRequestVoteResponse(out)
	if !ok || args.Term != 3 || args.VoteGranted {
		t.Fatalf("args = %+v, ok=%v", args, ok)
	}
}

func TestDecodeWrongTypeReturnsFalse(t *testing.T) {
	env := NewRequestVote(1, 1, 0, 0).Stamp(1, 1)
	if _, ok := DecodeAppendEntries(env); ok {
		t.Fatalf("DecodeAppendEntries on a RequestVote envelope should fail")
	}
}

func TestDecodeMissingArgReturnsFalse(t *testing.T) {
	env := Envelope{Type: RequestVote, Args: []namedArg{{Name: argTerm, Blob: "1"}}}
	if _, ok := DecodeRequestVote(env); ok {
		t.Fatalf("DecodeRequestVote with missing args should fail")
	}
}

func TestUnknownArgKeysAreIgnored(t *testing.T) {
	env := NewRequestVoteResponse(1, true)
	env.Args = append(env.Args, namedArg{Name: "somethingElse", Blob: `"whatever"`})
	env = env.Stamp(1, 1)
	out := roundTrip(t, env)
	args, ok := DecodeRequestVoteResponse(out)
	if !ok || args.Term != 1 || !args.VoteGranted {
		t.Fatalf("unknown key should be ignored: args=%+v ok=%v", args, ok)
	}
}

func TestDoubleEncodedArgShape(t *testing.T) {
	env := NewRequestVoteResponse(1, true).Stamp(1, 1)
	data, err := Encode(env)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// The term argument's blob must itself be a JSON document embedded
	// as an escaped string -- i.e. the outer document literally contains
	// the substring `"1"` (the encoded int 1, itself JSON, re-encoded as
	// a JSON string) rather than a bare `1`.
	if !contains(data, []byte(`"1"`)) {
		t.Fatalf("expected double-encoded term arg in wire form, got: %s", data)
	}
}

func contains(haystack, needle []byte) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return true
		}
	}
	return false
}
