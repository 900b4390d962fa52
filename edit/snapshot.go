package edit

// Snapshot is an immutable clone of a reference's attribute state taken
// before a pending edit was applied. It satisfies scl.AttrSource so the
// resolver can evaluate the subscription invariant on pre-edit state.
type Snapshot struct {
	attrs map[string]string
}

// NewSnapshot wraps a cloned attribute map. The caller must not reuse the
// map after handing it over.
func NewSnapshot(attrs map[string]string) *Snapshot {
	return &Snapshot{attrs: attrs}
}

// Attr returns the snapshotted value of the named attribute, or "".
func (s *Snapshot) Attr(name string) string {
	if s == nil {
		return ""
	}
	return s.attrs[name]
}

// HasAttr reports whether the attribute was present at capture time.
func (s *Snapshot) HasAttr(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.attrs[name]
	return ok
}

// SnapshotStore holds the pre-edit snapshots of one notification cycle,
// keyed by position in the flattened record batch. It must be cleared at the
// end of every cycle, whether or not inference fired: a stale snapshot
// observed by a later cycle would corrupt the before/after comparison.
//
// Cycles are single-threaded, so the store needs no locking.
type SnapshotStore struct {
	snaps map[int]*Snapshot
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[int]*Snapshot)}
}

// Put records the snapshot for the record at position idx.
func (st *SnapshotStore) Put(idx int, s *Snapshot) {
	st.snaps[idx] = s
}

// Take returns and removes the snapshot for position idx. Each snapshot is
// consumed exactly once.
func (st *SnapshotStore) Take(idx int) (*Snapshot, bool) {
	s, ok := st.snaps[idx]
	if ok {
		delete(st.snaps, idx)
	}
	return s, ok
}

// Clear discards all snapshots. Called unconditionally at cycle end.
func (st *SnapshotStore) Clear() {
	st.snaps = make(map[int]*Snapshot)
}

// Len returns the number of snapshots currently held.
func (st *SnapshotStore) Len() int {
	return len(st.snaps)
}
