package chooser

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/choicerank/internal/entry"
	"github.com/danielpatrickdp/choicerank/internal/history"
	"github.com/danielpatrickdp/choicerank/internal/rank"
	"github.com/danielpatrickdp/choicerank/internal/store"
)

// #region model

// Model owns one named choice history and the ordered candidate list
// derived from it. The synchronous surface (assembly, scoring, sorting,
// choosing) runs on the caller's goroutine under the model lock; history
// I/O runs on the shared task runner, one task at a time. Ordered entries
// handed out are always copies, so callers never observe a half-updated
// weight.
type Model struct {
	mu sync.Mutex

	name   string
	tag    string
	store  store.Store
	runner TaskRunner
	source CandidateSource
	scorer rank.Scorer

	listener  ChoiceListener
	observers map[int]func()
	nextSub   int

	query         Query
	prepended     []entry.Entry
	resolved      []entry.Entry
	additional    []entry.Entry
	ordered       []entry.Entry
	resolvedCount int

	log  *history.Log
	gate gate
}

// NewModel builds a model over one named history. An empty name disables
// persistence entirely. Shared use normally goes through a Registry, which
// also requests the first read; direct users call RequestRead themselves
// before anything can be persisted.
func NewModel(name string, st store.Store, runner TaskRunner, source CandidateSource) *Model {
	if name != "" {
		name = store.NormalizeName(name)
	}
	tag := name
	if tag == "" {
		tag = "ephemeral-" + uuid.New().String()
	}
	return &Model{
		name:      name,
		tag:       tag,
		store:     st,
		runner:    runner,
		source:    source,
		scorer:    rank.DefaultScorer(),
		observers: make(map[int]func()),
		log:       history.NewLog(),
		gate:      newGate(),
	}
}

// Name returns the normalized store name, empty for non-persisted models.
func (m *Model) Name() string {
	return m.name
}

// State returns the current read/write gate state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gate.state
}

func (m *Model) persisted() bool {
	return m.name != "" && m.store != nil && m.runner != nil
}

// #endregion model

// #region read-persist

// RequestRead schedules an asynchronous load of the backing history unless
// one is already pending or there is nothing unread. The first passing
// call is what unlocks persisting.
func (m *Model) RequestRead() {
	m.mu.Lock()
	proceed := m.gate.beginRead(m.persisted())
	m.mu.Unlock()
	if proceed {
		m.runner.Submit("load "+m.name, m.loadTask)
	}
}

// loadTask runs on the task runner: disk and parsing happen off the model
// lock, the merge and reordering under it, notifications after it.
func (m *Model) loadTask() {
	records, err := m.store.Load(m.name)
	if err != nil {
		log.Printf("[chooser] %s: load history: %v", m.tag, err)
		m.mu.Lock()
		m.gate.loadFailed()
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	before := m.log.Len()
	novel := m.log.Merge(records)
	if !novel && m.log.Len() == before {
		// The store had nothing the log did not already hold.
		m.gate.loadDone(false)
		m.mu.Unlock()
		return
	}
	pruned := m.log.Prune()
	m.gate.loadDone(novel || pruned > 0)
	m.rebuildLocked()
	fns := m.observerList()
	m.mu.Unlock()
	notify(fns)
}

// saveTask runs on the task runner. The snapshot is taken under the lock
// when the task runs, so records appended between scheduling and running
// are covered by this save.
func (m *Model) saveTask() {
	m.mu.Lock()
	records := m.log.Records()
	m.mu.Unlock()

	err := m.store.Save(m.name, records)
	if err != nil {
		log.Printf("[chooser] %s: save history: %v", m.tag, err)
	}

	m.mu.Lock()
	m.gate.persistDone(err)
	m.mu.Unlock()
}

// appendRecordLocked is the shared tail of Choose and SetDefaultEntry:
// append, prune, schedule a save, reorder. Fails fast before touching the
// log when no read was ever requested.
func (m *Model) appendRecordLocked(rec history.Record) ([]func(), error) {
	if !m.gate.readRequested {
		return nil, ErrInvalidState
	}
	m.log.Append(rec)
	m.gate.markDirty()
	m.log.Prune()
	schedule, err := m.gate.beginPersist(m.persisted())
	if err != nil {
		return nil, err
	}
	if schedule {
		m.runner.Submit("save "+m.name, m.saveTask)
	}
	m.rebuildLocked()
	return m.observerList(), nil
}

// #endregion read-persist

// #region groups

// SetQuery replaces the resolution query and reassembles. Setting the
// current query again is a no-op. Prepended and additional entries must
// already be in place; this call picks them up.
func (m *Model) SetQuery(q Query) {
	m.mu.Lock()
	if m.query == q {
		m.mu.Unlock()
		return
	}
	m.query = q
	m.resolved = nil
	if q != "" && m.source != nil {
		resolved, err := m.source.Resolve(q)
		if err != nil {
			log.Printf("[chooser] %s: resolve %q: %v", m.tag, string(q), err)
		} else {
			m.resolved = entry.Clone(resolved)
		}
	}
	m.rebuildLocked()
	fns := m.observerList()
	m.mu.Unlock()
	notify(fns)
}

// Query returns the current resolution query.
func (m *Model) Query() Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// SetPrepended replaces the pinned entries shown above the ranked ones.
// Call before SetQuery; the change applies on the next assembly.
func (m *Model) SetPrepended(entries []entry.Entry) {
	m.mu.Lock()
	m.prepended = entry.Clone(entries)
	m.mu.Unlock()
}

// SetAdditional replaces the extra entries appended after the resolved
// ones. Call before SetQuery; the change applies on the next assembly.
func (m *Model) SetAdditional(entries []entry.Entry) {
	m.mu.Lock()
	m.additional = entry.Clone(entries)
	m.mu.Unlock()
}

// rebuildLocked reassembles the ordered list: dedup the three groups in
// order (first occurrence wins), score fresh copies against the history,
// take the largest weight among non-prepended entries, put the prepended
// ones back at the end, then stable-sort the lot.
func (m *Model) rebuildLocked() {
	seen := make(map[string]struct{}, len(m.prepended)+len(m.resolved)+len(m.additional))
	working := make([]entry.Entry, 0, len(m.prepended)+len(m.resolved)+len(m.additional))
	add := func(group []entry.Entry) int {
		kept := 0
		for _, e := range group {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			working = append(working, e)
			kept++
		}
		return kept
	}
	add(m.prepended)
	m.resolvedCount = add(m.resolved)
	add(m.additional)

	scored := m.scorer.Apply(working, m.log.Records())

	specialIDs := make(map[string]struct{}, len(m.prepended))
	for _, e := range m.prepended {
		specialIDs[e.ID] = struct{}{}
	}
	normals := make([]entry.Entry, 0, len(scored))
	specials := make([]entry.Entry, 0, len(m.prepended))
	for _, e := range scored {
		if _, ok := specialIDs[e.ID]; ok {
			specials = append(specials, e)
			continue
		}
		normals = append(normals, e)
	}
	largestNormal := rank.LargestWeight(normals)

	ordered := append(normals, specials...)
	rank.NewOrdering(largestNormal, specials).Sort(ordered)
	m.ordered = ordered
}

// #endregion groups

// #region choose

// Choose records the choice at index and returns its payload. When an
// installed listener consumes the choice, handled is true, nothing is
// recorded, and the payload must not be acted on. Choosing before any
// read was requested fails with ErrInvalidState and records nothing.
func (m *Model) Choose(index int) (payload string, handled bool, err error) {
	m.mu.Lock()
	if index < 0 || index >= len(m.ordered) {
		m.mu.Unlock()
		return "", false, ErrIndexOutOfRange
	}
	chosen := m.ordered[index]
	if m.listener != nil && m.listener.OnChosen(chosen.Payload) {
		m.mu.Unlock()
		return "", true, nil
	}
	rec := history.Record{
		EntryID: chosen.ID,
		Time:    time.Now().UnixMilli(),
		Weight:  history.DefaultRecordWeight,
	}
	fns, err := m.appendRecordLocked(rec)
	m.mu.Unlock()
	notify(fns)
	if err != nil {
		return "", false, err
	}
	return chosen.Payload, false, nil
}

// SetDefaultEntry synthesizes a record heavy enough to put the entry at
// index on top of the next sort: the current top weight minus the entry's
// weight plus a fixed inflation, so the new default survives a few decayed
// comparisons before natural decay can displace it.
func (m *Model) SetDefaultEntry(index int) error {
	m.mu.Lock()
	if index < 0 || index >= len(m.ordered) {
		m.mu.Unlock()
		return ErrIndexOutOfRange
	}
	chosen := m.ordered[index]
	top := m.ordered[0]
	rec := history.Record{
		EntryID: chosen.ID,
		Time:    time.Now().UnixMilli(),
		Weight:  top.Weight - chosen.Weight + DefaultEntryInflation,
	}
	fns, err := m.appendRecordLocked(rec)
	m.mu.Unlock()
	notify(fns)
	return err
}

// SetChoiceListener installs the listener consulted by Choose; nil removes
// it.
func (m *Model) SetChoiceListener(l ChoiceListener) {
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
}

// #endregion choose

// #region accessors

// OrderedEntries returns a copy of the current ordered list. Indices stay
// valid until the next assembly or reorder.
func (m *Model) OrderedEntries() []entry.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entry.Clone(m.ordered)
}

// Count returns the number of ordered entries, custom ones included.
func (m *Model) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ordered)
}

// ResolvedCount returns how many ordered entries came from the candidate
// source.
func (m *Model) ResolvedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolvedCount
}

// EntryAt returns the entry at index in the current order.
func (m *Model) EntryAt(index int) (entry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.ordered) {
		return entry.Entry{}, ErrIndexOutOfRange
	}
	return m.ordered[index], nil
}

// IndexOf returns the position of the entry with id, or -1.
func (m *Model) IndexOf(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.ordered {
		if e.ID == id {
			return i
		}
	}
	return invalidIndex
}

// DefaultEntry returns the top-ranked entry, if any.
func (m *Model) DefaultEntry() (entry.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ordered) == 0 {
		return entry.Entry{}, false
	}
	return m.ordered[0], true
}

// HistorySize returns the number of records currently held.
func (m *Model) HistorySize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Len()
}

// HistoryMaxSize returns the current history cap.
func (m *Model) HistoryMaxSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Max()
}

// SetHistoryMaxSize caps the history log, dropping oldest records
// immediately when over the new cap. Dropped records leave the log ahead
// of the store; the next recorded choice persists the difference.
func (m *Model) SetHistoryMaxSize(max int) {
	m.mu.Lock()
	if m.log.Max() == max {
		m.mu.Unlock()
		return
	}
	if m.log.SetMax(max) > 0 {
		m.gate.markDirty()
	}
	m.rebuildLocked()
	fns := m.observerList()
	m.mu.Unlock()
	notify(fns)
}

// #endregion accessors

// #region observers

// Subscribe registers fn to run after every reordering. The returned
// cancel removes the subscription. fn runs outside the model lock and may
// call back into the model.
func (m *Model) Subscribe(fn func()) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.observers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

func (m *Model) observerList() []func() {
	fns := make([]func(), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// #endregion observers
