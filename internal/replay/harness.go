package replay

import (
	"fmt"
	"sync"

	"github.com/danielpatrickdp/choicerank/internal/chooser"
	"github.com/danielpatrickdp/choicerank/internal/entry"
	"github.com/danielpatrickdp/choicerank/internal/history"
	"github.com/danielpatrickdp/choicerank/internal/work"
)

// #region types

// Result captures the outcome of replaying one fixture step.
type Result struct {
	Step int
	Op   string

	// Choose steps only
	Payload string
	Handled bool

	// Ordered entry ids after the step settled
	Order []string

	// Step execution error, empty when the step ran cleanly
	Err string

	// Expectation failure, empty when expectations held
	Mismatch string
}

// Failed reports whether the step errored or missed an expectation.
func (r Result) Failed() bool {
	return r.Err != "" || r.Mismatch != ""
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps int
	Chooses    int
	Failures   int
	FinalOrder []string
}

// #endregion types

// #region fixture-collaborators

// fixtureSource resolves queries against the fixture's candidate table.
type fixtureSource struct {
	candidates map[string][]entry.Entry
}

func newFixtureSource(f *Fixture) *fixtureSource {
	candidates := make(map[string][]entry.Entry, len(f.Candidates))
	for query, cands := range f.Candidates {
		candidates[query] = toEntries(cands, entry.KindResolved)
	}
	return &fixtureSource{candidates: candidates}
}

func (s *fixtureSource) Resolve(q chooser.Query) ([]entry.Entry, error) {
	return entry.Clone(s.candidates[string(q)]), nil
}

// fixtureStore holds one in-memory record log, seeded from the fixture.
type fixtureStore struct {
	mu      sync.Mutex
	records []history.Record
}

func newFixtureStore(f *Fixture) *fixtureStore {
	records := make([]history.Record, len(f.History))
	for i, r := range f.History {
		records[i] = r.ToRecord()
	}
	return &fixtureStore{records: records}
}

func (s *fixtureStore) Load(string) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]history.Record(nil), s.records...), nil
}

func (s *fixtureStore) Save(_ string, records []history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]history.Record(nil), records...)
	return nil
}

// #endregion fixture-collaborators

// #region replay

// Replay runs the fixture's steps against a fresh model over an in-memory
// store, draining scheduled I/O after every step so results are
// deterministic. Nothing touches disk.
func Replay(f *Fixture) []Result {
	name := f.Store
	if name == "" {
		name = "fixture"
	}
	queue := work.NewQueue()
	defer queue.Close()

	m := chooser.NewModel(name, newFixtureStore(f), queue, newFixtureSource(f))
	m.RequestRead()
	queue.Drain()
	if f.MaxHistory > 0 {
		m.SetHistoryMaxSize(f.MaxHistory)
	}

	results := make([]Result, 0, len(f.Steps))
	for i, step := range f.Steps {
		r := Result{Step: i, Op: step.Op}
		switch step.Op {
		case OpQuery:
			m.SetQuery(chooser.Query(step.Query))
		case OpPrepend:
			m.SetPrepended(toEntries(step.Entries, entry.KindCustom))
		case OpAdditional:
			m.SetAdditional(toEntries(step.Entries, entry.KindCustom))
		case OpChoose:
			r.Payload, r.Handled, r.Err = describeChoose(m.Choose(step.Index))
		case OpChooseID:
			r.Payload, r.Handled, r.Err = describeChoose(m.Choose(m.IndexOf(step.EntryID)))
		case OpDefault:
			if err := m.SetDefaultEntry(step.Index); err != nil {
				r.Err = err.Error()
			}
		case OpMaxSize:
			m.SetHistoryMaxSize(step.Size)
		default:
			r.Err = fmt.Sprintf("unknown op %q", step.Op)
		}
		queue.Drain()

		r.Order = orderedIDs(m)
		r.Mismatch = checkExpectations(step, r.Order)
		results = append(results, r)
	}
	return results
}

func describeChoose(payload string, handled bool, err error) (string, bool, string) {
	if err != nil {
		return "", false, err.Error()
	}
	return payload, handled, ""
}

func orderedIDs(m *chooser.Model) []string {
	entries := m.OrderedEntries()
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func checkExpectations(step FixtureStep, order []string) string {
	if step.ExpectTop != "" {
		if len(order) == 0 {
			return fmt.Sprintf("top = none, want %s", step.ExpectTop)
		}
		if order[0] != step.ExpectTop {
			return fmt.Sprintf("top = %s, want %s", order[0], step.ExpectTop)
		}
	}
	if step.ExpectOrder != nil {
		if len(order) != len(step.ExpectOrder) {
			return fmt.Sprintf("order = %v, want %v", order, step.ExpectOrder)
		}
		for i := range order {
			if order[i] != step.ExpectOrder[i] {
				return fmt.Sprintf("order = %v, want %v", order, step.ExpectOrder)
			}
		}
	}
	return ""
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		if r.Op == OpChoose || r.Op == OpChooseID {
			s.Chooses++
		}
		if r.Failed() {
			s.Failures++
		}
	}
	if len(results) > 0 {
		s.FinalOrder = results[len(results)-1].Order
	}
	return s
}

// #endregion replay
