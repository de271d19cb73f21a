package search

import (
	"context"

	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/worker"
)

// AsyncEngine runs engine queries on a worker pool so callers never scan the corpus
// on their own goroutine. Each call returns a future; dropping it is safe.
type AsyncEngine struct {
	engine *Engine
	pool   *worker.Pool
}

// NewAsyncEngine wraps engine with pool.
func NewAsyncEngine(engine *Engine, pool *worker.Pool) *AsyncEngine {
	return &AsyncEngine{engine: engine, pool: pool}
}

// Engine returns the wrapped synchronous engine.
func (a *AsyncEngine) Engine() *Engine { return a.engine }

// CrossReference schedules Engine.CrossReference.
func (a *AsyncEngine) CrossReference(ctx context.Context, scope models.Scope, query string) *worker.Future[*models.SearchResponse] {
	return worker.Submit(a.pool, func() (*models.SearchResponse, error) {
		return a.engine.CrossReference(ctx, scope, query), nil
	})
}

// Proximity schedules Engine.Proximity.
func (a *AsyncEngine) Proximity(ctx context.Context, term1, term2 string, maxDistance int) *worker.Future[*models.SearchResponse] {
	return worker.Submit(a.pool, func() (*models.SearchResponse, error) {
		return a.engine.Proximity(ctx, term1, term2, maxDistance), nil
	})
}

// BookFrequencies schedules Engine.BookFrequencies.
func (a *AsyncEngine) BookFrequencies(ctx context.Context, terms []string) *worker.Future[*models.FrequencyResponse] {
	return worker.Submit(a.pool, func() (*models.FrequencyResponse, error) {
		return a.engine.BookFrequencies(ctx, terms), nil
	})
}

// ChapterFrequencies schedules Engine.ChapterFrequencies.
func (a *AsyncEngine) ChapterFrequencies(ctx context.Context, book string, terms []string) *worker.Future[*models.FrequencyResponse] {
	return worker.Submit(a.pool, func() (*models.FrequencyResponse, error) {
		return a.engine.ChapterFrequencies(ctx, book, terms), nil
	})
}
