// Package search provides the corpus query engine: scoped cross-reference search,
// proximity search and the frequency queries that back the charts.
package search

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/analytics"
	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/models"
)

// Engine is the boundary between callers and the corpus. It triggers the loads each
// query needs, runs the query against the cached volumes and never fails: load
// failures and internal faults surface as empty results and log entries.
type Engine struct {
	store     *corpus.Store
	analyzer  *analytics.Analyzer
	proximity *ProximitySearcher
	crossref  *CrossReferenceSearcher
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAnalyzer replaces the default frequency analyzer.
func WithAnalyzer(a *analytics.Analyzer) EngineOption {
	return func(e *Engine) {
		if a != nil {
			e.analyzer = a
		}
	}
}

// NewEngine creates an engine over store.
func NewEngine(store *corpus.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		proximity: NewProximitySearcher(nil),
		crossref:  NewCrossReferenceSearcher(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		e.analyzer = analytics.NewAnalyzer(analytics.WithLogger(e.logger))
	}
	return e
}

// CrossReference returns the verses within scope containing query. A scope naming a
// volume loads only that volume; any other scope loads the whole corpus first. A scope
// naming an unknown volume matches nothing.
func (e *Engine) CrossReference(ctx context.Context, scope models.Scope, query string) *models.SearchResponse {
	start := time.Now()
	resp := &models.SearchResponse{Results: []models.SearchResult{}, Query: query}
	e.run(ctx, "cross_reference", func(ctx context.Context, id string) {
		if scope.Volume != "" {
			if !e.store.Known(scope.Volume) {
				return
			}
			e.store.EnsureLoaded(ctx, scope.Volume)
		} else {
			e.store.EnsureAllLoaded(ctx)
		}
		if ctx.Err() != nil {
			return
		}
		if hits := e.crossref.Search(e.store.Loaded(), scope, query); hits != nil {
			resp.Results = hits
		}
		e.logger.Debug("cross reference search",
			zap.String("query_id", id),
			zap.String("query", query),
			zap.Stringer("scope", scope.Kind),
			zap.String("volume", scope.Volume),
			zap.Strings("books", scope.Books),
			zap.Int("results", len(resp.Results)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	resp.Total = len(resp.Results)
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp
}

// Proximity returns the verses where term1 and term2 occur within maxDistance tokens.
func (e *Engine) Proximity(ctx context.Context, term1, term2 string, maxDistance int) *models.SearchResponse {
	start := time.Now()
	resp := &models.SearchResponse{
		Results: []models.SearchResult{},
		Query:   fmt.Sprintf("%s NEAR/%d %s", term1, maxDistance, term2),
	}
	e.run(ctx, "proximity", func(ctx context.Context, id string) {
		e.store.EnsureAllLoaded(ctx)
		if ctx.Err() != nil {
			return
		}
		if hits := e.proximity.Search(e.store.Loaded(), term1, term2, maxDistance); hits != nil {
			resp.Results = hits
		}
		e.logger.Debug("proximity search",
			zap.String("query_id", id),
			zap.String("term1", term1),
			zap.String("term2", term2),
			zap.Int("max_distance", maxDistance),
			zap.Int("results", len(resp.Results)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	resp.Total = len(resp.Results)
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp
}

// BookFrequencies loads the whole corpus and returns per-book counts of terms.
func (e *Engine) BookFrequencies(ctx context.Context, terms []string) *models.FrequencyResponse {
	start := time.Now()
	resp := &models.FrequencyResponse{Table: models.FrequencyTable{}, Terms: terms}
	e.run(ctx, "book_frequencies", func(ctx context.Context, id string) {
		e.store.EnsureAllLoaded(ctx)
		if ctx.Err() != nil {
			return
		}
		resp.Table = e.analyzer.BookFrequencies(e.store.Loaded(), terms)
		e.logger.Debug("book frequencies",
			zap.String("query_id", id),
			zap.Strings("terms", terms),
			zap.Int("labels", len(resp.Table)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	resp.Labels = resp.Table.SortedLabels()
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp
}

// ChapterFrequencies loads the whole corpus and returns per-chapter counts of terms
// for every book named book.
func (e *Engine) ChapterFrequencies(ctx context.Context, book string, terms []string) *models.FrequencyResponse {
	start := time.Now()
	resp := &models.FrequencyResponse{Table: models.FrequencyTable{}, Terms: terms, Book: book}
	e.run(ctx, "chapter_frequencies", func(ctx context.Context, id string) {
		e.store.EnsureAllLoaded(ctx)
		if ctx.Err() != nil {
			return
		}
		resp.Table = e.analyzer.ChapterFrequencies(e.store.Loaded(), book, terms)
		e.logger.Debug("chapter frequencies",
			zap.String("query_id", id),
			zap.String("book", book),
			zap.Strings("terms", terms),
			zap.Int("labels", len(resp.Table)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	resp.Labels = resp.Table.SortedLabels()
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp
}

// LoadVolume ensures the named volume is loaded and returns its status. ok is false
// for names outside the known volume set.
func (e *Engine) LoadVolume(ctx context.Context, name string) (corpus.VolumeStatus, bool) {
	if !e.store.Known(name) {
		return corpus.VolumeStatus{}, false
	}
	e.store.EnsureLoaded(ctx, name)
	for _, st := range e.store.Status() {
		if st.Name == name {
			return st, true
		}
	}
	return corpus.VolumeStatus{}, false
}

// Status returns the load status of every volume.
func (e *Engine) Status() []corpus.VolumeStatus {
	return e.store.Status()
}

// Volumes returns the known volume names in traversal order.
func (e *Engine) Volumes() []string {
	return e.store.Names()
}

// run executes fn with a fresh query id, converting a panic into a logged error.
func (e *Engine) run(ctx context.Context, op string, fn func(ctx context.Context, id string)) {
	id := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("query failed",
				zap.String("op", op),
				zap.String("query_id", id),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn(ctx, id)
}
