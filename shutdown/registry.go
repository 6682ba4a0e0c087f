// Package shutdown coordinates graceful process teardown: an ordered
// registry of cleanup functions and signal handling with a force path
// for a second Ctrl-C.
package shutdown

import (
	"context"
	"sort"
	"sync"
)

// Func is a cleanup function run during shutdown.
type Func func(ctx context.Context) error

type entry struct {
	name     string
	fn       Func
	priority int // lower runs first
}

// Registry maintains an ordered collection of shutdown functions.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates a Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a shutdown function. Lower priority values execute
// earlier. Registration after Shutdown has been called is a no-op.
//
// Typical priorities: 10 stop accepting requests, 20 release pipelines,
// 30 close storage, 40 flush logs.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Shutdown executes all registered functions in priority order. Every
// function runs even if earlier ones fail; errors are collected and
// returned. The registry is closed afterwards and a second call is a
// no-op returning nil.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	r.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Names returns registered function names in priority order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered shutdown functions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
