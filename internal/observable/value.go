// Package observable provides a single-writer, multi-reader state container
// that always hands readers a whole snapshot.
package observable

import (
	"context"
	"sync"
)

// Value holds the latest snapshot of a T and notifies watchers on change.
//
// Writes are serialized under a mutex, so readers never observe a partial
// write. T should be treated as immutable once stored: the container hands
// out the stored value itself, not a copy.
//
// Change notification uses a broadcast channel that is closed and replaced
// on every store. Any number of watchers can select on it together with
// ctx.Done().
type Value[T any] struct {
	mu      sync.Mutex
	current T
	version uint64
	changed chan struct{} // closed on the next store
}

// New creates a Value holding initial at version 0.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		changed: make(chan struct{}),
	}
}

// Load returns the latest snapshot.
func (v *Value[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Version returns the number of stores applied so far.
func (v *Value[T]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Store replaces the snapshot and wakes every watcher.
func (v *Value[T]) Store(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.storeLocked(next)
}

// Update atomically derives the next snapshot from the current one.
// fn runs under the write lock and must not call back into v.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := fn(v.current)
	v.storeLocked(next)
	return next
}

func (v *Value[T]) storeLocked(next T) {
	v.current = next
	v.version++
	close(v.changed)
	v.changed = make(chan struct{})
}

// snapshot returns the current value, its version and the channel that will
// be closed by the next store.
func (v *Value[T]) snapshot() (T, uint64, <-chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.version, v.changed
}

// Watch returns a watcher that has not yet seen any snapshot, so its first
// Next returns immediately with the current value.
func (v *Value[T]) Watch() *Watcher[T] {
	return &Watcher[T]{v: v}
}

// Watcher follows a Value. Intermediate snapshots stored between two calls
// to Next are conflated: Next always returns the latest.
//
// A Watcher is not safe for concurrent use; give each reader its own.
type Watcher[T any] struct {
	v    *Value[T]
	seen uint64
	init bool
}

// Next blocks until a snapshot newer than the last one returned is
// available, then returns it. Returns ctx.Err() if ctx ends first.
func (w *Watcher[T]) Next(ctx context.Context) (T, error) {
	for {
		cur, version, changed := w.v.snapshot()
		if !w.init || version > w.seen {
			w.init = true
			w.seen = version
			return cur, nil
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-changed:
		}
	}
}
