// Package collector orchestrates the per-provider source collectors:
// a registry of collectors, the shared paginated reader, and the runner
// that wraps every collection in a ledger entry.
package collector

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/model"
	"github.com/ballotwatch/candidate-sync/internal/store"
)

// Collector is one provider's collection pipeline. Implementations hold
// their own fetch client (with the provider's delay and backoff policy)
// and provider-specific field maps; they write to the canonical store
// only through its resolver and merge engine.
//
// Collect returns the run statistics even when it fails, so the ledger
// can persist whatever was gathered before the fatal condition.
type Collector interface {
	Name() string
	Collect(ctx context.Context, st *store.Store) (*model.Stats, error)
}

// Registry maps collector names to implementations, preserving
// registration order for deterministic runs.
type Registry struct {
	collectors map[string]Collector
	order      []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// Register adds a collector.
func (r *Registry) Register(c Collector) {
	name := c.Name()
	r.collectors[name] = c
	r.order = append(r.order, name)
}

// Get returns a collector by name.
func (r *Registry) Get(name string) (Collector, error) {
	c, ok := r.collectors[name]
	if !ok {
		return nil, eris.Errorf("collector: unknown source %q", name)
	}
	return c, nil
}

// Select returns the named collectors, or all of them when names is
// empty, in registration order.
func (r *Registry) Select(names []string) ([]Collector, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	var out []Collector
	for _, name := range names {
		c, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// All returns every collector in registration order.
func (r *Registry) All() []Collector {
	out := make([]Collector, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.collectors[name])
	}
	return out
}

// Names returns the registered collector names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
