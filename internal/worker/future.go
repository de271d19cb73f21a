package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Future is the pending result of a job submitted with Submit. The result is stored
// before Done is closed, so a job whose result is never read leaves nothing blocked.
type Future[T any] struct {
	id   string
	done chan struct{}
	val  T
	err  error
}

// Submit runs fn on the pool and returns its future. A panic in fn completes the
// future with an error. If the pool cannot accept the job the future is already
// complete with that error.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{id: uuid.NewString(), done: make(chan struct{})}
	err := p.submit(func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("job panic", zap.String("job_id", f.id), zap.Any("panic", r))
				var zero T
				f.val, f.err = zero, fmt.Errorf("job panic: %v", r)
			}
		}()
		f.val, f.err = fn()
	})
	if err != nil {
		f.err = err
		close(f.done)
	}
	return f
}

// ID returns the job id assigned at submission.
func (f *Future[T]) ID() string { return f.id }

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the result is available or ctx is done. Abandoning a wait does
// not cancel the job.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
