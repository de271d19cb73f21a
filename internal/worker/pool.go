// Package worker runs corpus queries off the caller's goroutine on a bounded pool.
package worker

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrPoolClosed is reported by futures submitted after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool is a bounded goroutine pool backed by ants.
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool's logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates a pool running at most size jobs at once. A non-positive size
// means runtime.NumCPU().
func NewPool(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(r interface{}) {
		p.logger.Error("worker panic", zap.Any("panic", r))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	p.pool = pool
	return p, nil
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int { return p.pool.Cap() }

// Close releases the pool. Jobs already running finish; later submissions fail
// with ErrPoolClosed.
func (p *Pool) Close() {
	p.pool.Release()
}

// submit schedules fn, blocking while the pool is saturated.
func (p *Pool) submit(fn func()) error {
	if err := p.pool.Submit(fn); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return fmt.Errorf("submit job: %w", err)
	}
	return nil
}
