package exchange

import (
	"context"
	"sync"
)

// Lazy holds one piece of per-client session state, such as an account id,
// that is resolved on first use and then reused.
type Lazy[T any] struct {
	mu       sync.Mutex
	resolved bool
	value    T
}

// Get returns the resolved value, invoking load once on first use. A failed
// load leaves the state unresolved so the next call retries.
func (l *Lazy[T]) Get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved {
		return l.value, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.resolved = true
	return v, nil
}

// Set stores v and marks the state resolved.
func (l *Lazy[T]) Set(v T) {
	l.mu.Lock()
	l.value = v
	l.resolved = true
	l.mu.Unlock()
}

// Resolved reports whether a value is held.
func (l *Lazy[T]) Resolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved
}

// Reset forgets the value.
func (l *Lazy[T]) Reset() {
	l.mu.Lock()
	var zero T
	l.value = zero
	l.resolved = false
	l.mu.Unlock()
}
