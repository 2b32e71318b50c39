package codec

import (
	"encoding/json"

	"github.com/coreraft/raftcore/raft/types"
)

// wireEntryBody is the `{"_entryTerm": Term, "_entryData": payload}`
// object.
type wireEntryBody struct {
	Term term   `json:"_entryTerm"`
	Data []byte `json:"_entryData"`
}

// term is a local alias so this file doesn't have to repeat types.Term
// everywhere; kept unexported, it never leaks into a public signature.
type term = types.Term

// wireEntry is one `[LogIndex, {"_entryTerm":..., "_entryData":...}]`
// pair in the `entries` argument array.
type wireEntry struct {
	Index types.LogIndex
	Body  wireEntryBody
}

func (w wireEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{w.Index, w.Body})
}

func (w *wireEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &w.Index); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &w.Body)
}

func encodeEntries(entries []types.IndexedEntry) []wireEntry {
	out := make([]wireEntry, len(entries))
	for i, ie := range entries {
		out[i] = wireEntry{
			Index: ie.Index,
			Body:  wireEntryBody{Term: ie.Entry.Term, Data: ie.Entry.Command},
		}
	}
	return out
}

func decodeEntries(wire []wireEntry) []types.IndexedEntry {
	out := make([]types.IndexedEntry, len(wire))
	for i, w := range wire {
		out[i] = types.IndexedEntry{
			Index: w.Index,
			Entry: types.LogEntry{Term: w.Body.Term, Command: w.Body.Data},
		}
	}
	return out
}
