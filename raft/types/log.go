package types

import (
	"encoding/binary"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Log is the 1-indexed, ordered sequence of LogEntry values a server
// holds. It is backed by an immutable radix tree keyed by the entry's
// big-endian encoded index: handlers that hold a *Log read it while the
// persistence writer serializes a snapshot taken before the mutation,
// without needing a second lock to protect the in-flight write from a
// concurrent read of the prior value.
//
// Log values are never mutated in place; every mutating method returns a
// new *Log sharing unmodified subtrees with the receiver.
type Log struct {
	tree   *iradix.Tree
	length int
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{tree: iradix.New()}
}

// LogFromEntries builds a Log from an ordered slice of entries (index 1
// is entries[0]). Used when loading a persisted log.
func LogFromEntries(entries []LogEntry) *Log {
	l := NewLog()
	if len(entries) == 0 {
		return l
	}
	txn := l.tree.Txn()
	for i, e := range entries {
		txn.Insert(indexKey(LogIndex(i+1)), e)
	}
	return &Log{tree: txn.Commit(), length: len(entries)}
}

func indexKey(i LogIndex) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(i))
	return buf
}

// Length returns the number of entries currently in the log.
func (l *Log) Length() LogIndex {
	if l == nil {
		return 0
	}
	return LogIndex(l.length)
}

// EntryAt returns the entry at index i, or (zero, false) when i is 0,
// negative, or past the end of the log.
func (l *Log) EntryAt(i LogIndex) (LogEntry, bool) {
	if l == nil || i <= 0 || i > LogIndex(l.length) {
		return LogEntry{}, false
	}
	v, ok := l.tree.Get(indexKey(i))
	if !ok {
		return LogEntry{}, false
	}
	return v.(LogEntry), true
}

// LastTerm returns the term of the final entry, or 0 for an empty log.
func (l *Log) LastTerm() Term {
	if l == nil || l.length == 0 {
		return 0
	}
	e, _ := l.EntryAt(LogIndex(l.length))
	return e.Term
}

// TermAt returns the term at index i. Index 0 always yields (0, true),
// matching the sentinel "before the first entry".
func (l *Log) TermAt(i LogIndex) (Term, bool) {
	if i == 0 {
		return 0, true
	}
	e, ok := l.EntryAt(i)
	if !ok {
		return 0, false
	}
	return e.Term, true
}

// WithIndices returns every entry paired with its 1-based index, in
// order.
func (l *Log) WithIndices() []IndexedEntry {
	if l == nil || l.length == 0 {
		return nil
	}
	out := make([]IndexedEntry, 0, l.length)
	for i := 1; i <= l.length; i++ {
		e, _ := l.EntryAt(LogIndex(i))
		out = append(out, IndexedEntry{Index: LogIndex(i), Entry: e})
	}
	return out
}

// Entries returns the log contents as a plain ordered slice, for
// serialization to the persistent state layout.
func (l *Log) Entries() []LogEntry {
	if l == nil || l.length == 0 {
		return nil
	}
	out := make([]LogEntry, l.length)
	for i := 1; i <= l.length; i++ {
		e, _ := l.EntryAt(LogIndex(i))
		out[i-1] = e
	}
	return out
}

// AppendEntry returns a new Log with e appended as the next index.
func (l *Log) AppendEntry(e LogEntry) *Log {
	txn := l.tree.Txn()
	next := LogIndex(l.length + 1)
	txn.Insert(indexKey(next), e)
	return &Log{tree: txn.Commit(), length: l.length + 1}
}

// TruncateFrom returns a new Log with every entry at index >= from
// removed. It is a no-op (returns the receiver) if from is past the end
// of the log.
func (l *Log) TruncateFrom(from LogIndex) *Log {
	if from > LogIndex(l.length) {
		return l
	}
	if from <= 0 {
		return NewLog()
	}
	txn := l.tree.Txn()
	for i := int64(from); i <= int64(l.length); i++ {
		txn.Delete(indexKey(LogIndex(i)))
	}
	return &Log{tree: txn.Commit(), length: int(from) - 1}
}

// ReconcileEntries applies AppendEntries' per-entry merge rule:
// entries are ordered by index; an existing entry at a
// different term truncates the log from that point on, an empty slot is
// appended to, and an identical entry is left alone. It returns the
// resulting Log.
func ReconcileEntries(base *Log, entries []IndexedEntry) *Log {
	result := base
	for _, ie := range entries {
		existing, ok := result.EntryAt(ie.Index)
		switch {
		case !ok:
			// Empty slot: entries must arrive in index order directly
			// after the current end of the log.
			result = result.AppendEntry(ie.Entry)
		case existing.Term != ie.Entry.Term:
			result = result.TruncateFrom(ie.Index).AppendEntry(ie.Entry)
		default:
			// Identical entry already present; skip.
		}
	}
	return result
}
