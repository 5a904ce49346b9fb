package chooser

// #region state

// State is the read/write coordination state of a model's history log
// against its backing store.
type State string

const (
	// StateReadable means the log and the store are believed in sync; a
	// read may be requested if the store has unread data.
	StateReadable State = "readable"
	// StateReadPending means an asynchronous load has been scheduled and
	// has not completed yet.
	StateReadPending State = "read_pending"
	// StateDirty means the in-memory log is ahead of the store.
	StateDirty State = "dirty"
	// StatePersistPending means an asynchronous save has been scheduled
	// and has not completed yet.
	StatePersistPending State = "persist_pending"
)

// #endregion state

// #region gate

// gate holds the state machine fields. All access happens under the owning
// model's lock. unread starts true: a store never read from may hold data.
type gate struct {
	state         State
	readRequested bool
	unread        bool
}

func newGate() gate {
	return gate{state: StateReadable, unread: true}
}

// beginRead reports whether a load should be scheduled. The gate passes
// only from Readable with unread data, and the very first passing read is
// what unlocks persisting. A model without a backing store settles
// immediately: there is nothing to load.
func (g *gate) beginRead(persisted bool) bool {
	if g.state != StateReadable || !g.unread {
		return false
	}
	g.readRequested = true
	if !persisted {
		g.unread = false
		return false
	}
	g.state = StateReadPending
	return true
}

// loadDone settles a completed load. dirty reports whether the merge left
// the in-memory log ahead of the store. A load finishing while a save is
// pending leaves the state alone.
func (g *gate) loadDone(dirty bool) {
	g.unread = false
	if g.state != StateReadPending {
		return
	}
	if dirty {
		g.state = StateDirty
		return
	}
	g.state = StateReadable
}

// loadFailed abandons the attempt without touching the log. The store is
// not retried automatically.
func (g *gate) loadFailed() {
	g.unread = false
	if g.state == StateReadPending {
		g.state = StateReadable
	}
}

// markDirty marks the log ahead of the store, whatever was pending. Both
// appending a record and dropping records on a cap change land here.
func (g *gate) markDirty() {
	g.state = StateDirty
}

// beginPersist reports whether a save should be scheduled. The error is
// ErrInvalidState when no read was ever requested. A dirty model without a
// backing store settles in place: there is nowhere to write.
func (g *gate) beginPersist(persisted bool) (bool, error) {
	if !g.readRequested {
		return false, ErrInvalidState
	}
	if g.state != StateDirty {
		return false, nil
	}
	if !persisted {
		g.state = StateReadable
		return false, nil
	}
	g.state = StatePersistPending
	return true, nil
}

// persistDone settles a completed save. A failed save leaves the log
// dirty so the next mutation schedules a retry.
func (g *gate) persistDone(err error) {
	if g.state != StatePersistPending {
		return
	}
	if err != nil {
		g.state = StateDirty
		return
	}
	g.state = StateReadable
	g.unread = false
}

// #endregion gate
