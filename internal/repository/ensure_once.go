package repository

import (
	"context"
	"sync"
)

// EnsureOnce runs a setup step until it has succeeded once. A failed attempt
// is retried on the next call, so setup that needs a reachable store catches
// up after the store recovers.
type EnsureOnce struct {
	mu   sync.Mutex
	done bool
}

// Do runs fn unless an earlier call already succeeded
func (e *EnsureOnce) Do(ctx context.Context, fn func(context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return nil
	}
	if err := fn(ctx); err != nil {
		return err
	}
	e.done = true
	return nil
}

// Done reports whether setup has succeeded
func (e *EnsureOnce) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}
