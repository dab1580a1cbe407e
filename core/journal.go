package core

// journalEntry undoes a single Go-side state mutation performed by a hosted
// contract. Entries are replayed in reverse order on revert.
type journalEntry func()

// journal records contract-side mutations so they can be rolled back together
// with the StateDB when a call fails. It mirrors the balance/nonce journal of
// the StateDB for state that lives in Go structs instead of trie storage.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal {
	return &journal{}
}

// append records an undo action.
func (j *journal) append(undo journalEntry) {
	j.entries = append(j.entries, undo)
}

// length returns the current number of entries, used as a revision marker.
func (j *journal) length() int {
	return len(j.entries)
}

// revert undoes everything recorded after the given revision.
func (j *journal) revert(rev int) {
	for i := len(j.entries) - 1; i >= rev; i-- {
		j.entries[i]()
		j.entries[i] = nil
	}
	j.entries = j.entries[:rev]
}

// reset drops all entries once a top-level call has committed.
func (j *journal) reset() {
	clear(j.entries)
	j.entries = j.entries[:0]
}

// snapshot pairs a StateDB revision with a journal revision.
type snapshot struct {
	stateID int
	journal int
}

// Set assigns v to *p and journals the previous value.
func Set[T any](fr *Frame, p *T, v T) {
	prev := *p
	*p = v
	fr.Journal(func() { *p = prev })
}

// Put stores m[k] = v and journals the previous entry, or its absence.
func Put[K comparable, V any](fr *Frame, m map[K]V, k K, v V) {
	prev, existed := m[k]
	m[k] = v
	fr.Journal(func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}

// Append appends v to *s and journals the truncation.
func Append[T any](fr *Frame, s *[]T, v T) {
	n := len(*s)
	*s = append(*s, v)
	fr.Journal(func() { *s = (*s)[:n] })
}
