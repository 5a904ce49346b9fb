package chooser

import (
	"sync"

	"github.com/danielpatrickdp/choicerank/internal/store"
	"github.com/danielpatrickdp/choicerank/internal/work"
)

// #region registry

// Registry hands out models by history name, one shared model per name, so
// every caller using the same name sees the same ordering and the same
// pending I/O. It owns the task runner all its models share.
type Registry struct {
	mu     sync.Mutex
	store  store.Store
	source CandidateSource
	queue  *work.Queue
	models map[string]*Model
}

// NewRegistry builds a registry over one store and one candidate source.
// Close it to flush pending history I/O.
func NewRegistry(st store.Store, source CandidateSource) *Registry {
	return &Registry{
		store:  st,
		source: source,
		queue:  work.NewQueue(),
		models: make(map[string]*Model),
	}
}

// Get returns the shared model for name, creating it on first use. Names
// are normalized before lookup, so spellings that map to the same backing
// file share one model. Every call requests a read, which is a no-op
// unless the store may hold unread data. An empty name returns a fresh
// model that never touches the store.
func (r *Registry) Get(name string) *Model {
	if name == "" {
		m := NewModel("", nil, nil, r.source)
		m.RequestRead()
		return m
	}
	name = store.NormalizeName(name)

	r.mu.Lock()
	m, ok := r.models[name]
	if !ok {
		m = NewModel(name, r.store, r.queue, r.source)
		r.models[name] = m
	}
	r.mu.Unlock()

	m.RequestRead()
	return m
}

// Drain blocks until all scheduled history I/O has run.
func (r *Registry) Drain() {
	r.queue.Drain()
}

// Close drains pending history I/O and stops the task runner. Models stay
// usable in memory afterwards, but nothing further is persisted.
func (r *Registry) Close() {
	r.queue.Close()
}

// #endregion registry
