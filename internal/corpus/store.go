package corpus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/seisho/internal/models"
)

// Store caches volumes for the lifetime of the process. Each volume is loaded at
// most once: concurrent first-time requests for the same volume share a single
// in-flight load, while loads of different volumes proceed independently.
// A failed load leaves no cache entry, so a later EnsureLoaded retries it.
type Store struct {
	loader Loader
	names  []string
	known  map[string]struct{}
	logger *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	volumes  map[string]*models.Volume
	status   map[string]*VolumeStatus
	maxLoads int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used to report load failures.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxConcurrentLoads bounds how many volumes EnsureAllLoaded loads at once.
// Zero or negative means unbounded.
func WithMaxConcurrentLoads(n int) StoreOption {
	return func(s *Store) { s.maxLoads = n }
}

// NewStore creates an empty store. names is the fixed, ordered set of known volume
// names; it defines volume traversal order for whole-corpus queries.
func NewStore(loader Loader, names []string, opts ...StoreOption) *Store {
	s := &Store{
		loader:  loader,
		names:   append([]string(nil), names...),
		logger:  zap.NewNop(),
		known:   make(map[string]struct{}, len(names)),
		volumes: make(map[string]*models.Volume),
		status:  make(map[string]*VolumeStatus),
	}
	for _, name := range s.names {
		s.known[name] = struct{}{}
		s.status[name] = &VolumeStatus{Name: name, State: StateUnloaded}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Known reports whether name is one of the store's volumes.
func (s *Store) Known(name string) bool {
	_, ok := s.known[name]
	return ok
}

// Names returns the known volume names in traversal order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// EnsureLoaded loads the named volume unless it is already cached. Names outside the
// known volume set are ignored. Failures are
// logged and leave the volume absent; they are never returned. If ctx is done
// before the load finishes, EnsureLoaded stops waiting but the load itself runs
// to completion and its result is still cached.
func (s *Store) EnsureLoaded(ctx context.Context, name string) {
	if !s.Known(name) || s.isLoaded(name) {
		return
	}
	ch := s.group.DoChan(name, func() (interface{}, error) {
		if vol, ok := s.Volume(name); ok {
			return vol, nil
		}
		return s.load(context.WithoutCancel(ctx), name)
	})
	select {
	case <-ch:
	case <-ctx.Done():
	}
}

// EnsureAllLoaded calls EnsureLoaded for every known volume, loading them concurrently.
func (s *Store) EnsureAllLoaded(ctx context.Context) {
	var g errgroup.Group
	if s.maxLoads > 0 {
		g.SetLimit(s.maxLoads)
	}
	for _, name := range s.names {
		if s.isLoaded(name) {
			continue
		}
		g.Go(func() error {
			s.EnsureLoaded(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
}

// Volume returns the cached volume, or false if it has never loaded successfully.
func (s *Store) Volume(name string) (*models.Volume, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vol, ok := s.volumes[name]
	return vol, ok
}

// Loaded returns the cached volumes in traversal order.
func (s *Store) Loaded() []*models.Volume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Volume, 0, len(s.volumes))
	for _, name := range s.names {
		if vol, ok := s.volumes[name]; ok {
			out = append(out, vol)
		}
	}
	return out
}

// Status returns the status of every known volume in traversal order.
func (s *Store) Status() []VolumeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]VolumeStatus, 0, len(s.status))
	for _, name := range s.names {
		out = append(out, *s.status[name])
	}
	return out
}

func (s *Store) isLoaded(name string) bool {
	_, ok := s.Volume(name)
	return ok
}

func (s *Store) load(ctx context.Context, name string) (vol *models.Volume, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			vol = nil
			err = fmt.Errorf("loader panic: %v", r)
		}
		s.record(name, vol, err)
		if err != nil {
			s.logger.Warn("volume load failed", zap.String("volume", name), zap.Error(err))
			return
		}
		books, chapters, verses := vol.Counts()
		s.logger.Info("volume loaded",
			zap.String("volume", name),
			zap.Int("books", books),
			zap.Int("chapters", chapters),
			zap.Int("verses", verses),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()
	vol, err = s.loader.Load(ctx, name)
	if err == nil && vol == nil {
		err = fmt.Errorf("loader returned no volume for %s", name)
	}
	if err == nil && vol.Name == "" {
		vol.Name = name
	}
	return vol, err
}

func (s *Store) record(name string, vol *models.Volume, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[name]
	if err != nil {
		st.State = StateFailed
		st.LastError = err.Error()
		return
	}
	s.volumes[name] = vol
	st.State = StateLoaded
	st.LastError = ""
	st.Books, st.Chapters, st.Verses = vol.Counts()
	st.Digest = vol.Digest
	st.LoadedAt = time.Now()
}
