// Package views holds the headless state machines behind each dashboard
// screen. A view loads its data through the API, exposes a snapshot that
// renderers draw from, and reloads when the events bus reports that its data
// changed. Views never render; internal/render and internal/tui do.
package views

import (
	"context"
	"sync"
)

// Status is the observable phase of a Resource.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a point-in-time copy of a Resource.
type State[T any] struct {
	Status Status
	Data   T
	// HasData is set once any load succeeded. Data keeps the last good
	// value through later loading and error phases.
	HasData bool
	Err     error
}

// Resource tracks one read fetch. Every load gets a generation number and
// only the newest generation may settle the resource, so a slow response
// to an outdated request cannot overwrite the result of a newer one.
type Resource[T any] struct {
	mu      sync.Mutex
	gen     uint64
	status  Status
	data    T
	hasData bool
	err     error
}

// Begin marks the resource as loading and returns the generation the
// caller must pass to Finish.
func (r *Resource[T]) Begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.status = StatusLoading
	return r.gen
}

// Finish settles a load. It reports false, and changes nothing, when gen is
// no longer the latest generation. A failed load keeps the previous data.
func (r *Resource[T]) Finish(gen uint64, data T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return false
	}
	if err != nil {
		r.status = StatusError
		r.err = err
		return true
	}
	r.status = StatusReady
	r.data = data
	r.hasData = true
	r.err = nil
	return true
}

// Load runs fetch as a new generation and settles the resource with its
// result. The returned error is fetch's error, even when the result was
// discarded as stale.
func (r *Resource[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	gen := r.Begin()
	data, err := fetch(ctx)
	r.Finish(gen, data, err)
	return err
}

// Update applies fn to the current data without a fetch. It is used for
// optimistic changes such as appending a chat message.
func (r *Resource[T]) Update(fn func(T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = fn(r.data)
	r.hasData = true
	if r.status == StatusIdle {
		r.status = StatusReady
	}
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State[T]{Status: r.status, Data: r.data, HasData: r.hasData, Err: r.err}
}
