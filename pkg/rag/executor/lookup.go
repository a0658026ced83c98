package executor

import "context"

// lookup is a single-assignment result cell. The computation is launched
// exactly once, at construction, in its own goroutine; any number of
// consumers can Wait on it without re-triggering the underlying call.
// Scope is one pipeline invocation - this is not a global cache.
type lookup[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newLookup[T any](ctx context.Context, fn func(context.Context) (T, error)) *lookup[T] {
	l := &lookup[T]{done: make(chan struct{})}
	go func() {
		defer close(l.done)
		l.val, l.err = fn(ctx)
	}()
	return l
}

// Wait blocks until the computation resolves or the caller's context ends.
func (l *lookup[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-l.done:
		return l.val, l.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
