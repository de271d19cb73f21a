package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/analytics"
	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/loader"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/internal/server"
	"github.com/hyperjump/seisho/internal/storage"
	"github.com/hyperjump/seisho/internal/watcher"
	"github.com/hyperjump/seisho/internal/worker"
)

// Components holds initialized services.
type Components struct {
	Config  *config.Config
	Files   *loader.FileLoader
	Storage *storage.SQLiteStorage
	Store   *corpus.Store
	Engine  *search.Engine
	Async   *search.AsyncEngine
	Pool    *worker.Pool
	Disk    server.DiskUsager
}

// Close releases the worker pool and the database.
func (c *Components) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{Config: cfg, Files: newFileLoader(cfg, logger)}

	var source corpus.Loader
	switch cfg.Corpus.Source {
	case config.SourceSQLite:
		db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = db
		c.Disk = db
		source = db
	default:
		source = c.Files
		c.Disk = volumeFiles{files: c.Files}
	}

	c.Store = corpus.NewStore(source, cfg.Corpus.VolumeNames(),
		corpus.WithLogger(logger),
		corpus.WithMaxConcurrentLoads(cfg.Search.MaxConcurrentLoads),
	)

	var analyzerOpts []analytics.Option
	analyzerOpts = append(analyzerOpts, analytics.WithLogger(logger))
	if cfg.Search.VolumeQualifiedLabels {
		analyzerOpts = append(analyzerOpts, analytics.WithVolumeQualifiedLabels())
	}
	c.Engine = search.NewEngine(c.Store,
		search.WithLogger(logger),
		search.WithAnalyzer(analytics.NewAnalyzer(analyzerOpts...)),
	)

	pool, err := worker.NewPool(cfg.Search.Workers, worker.WithLogger(logger))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	c.Pool = pool
	c.Async = search.NewAsyncEngine(c.Engine, pool)
	logger.Info("corpus configured",
		zap.String("source", cfg.Corpus.Source),
		zap.Strings("volumes", cfg.Corpus.VolumeNames()),
		zap.Int("workers", pool.Cap()),
	)
	return c, nil
}

func newFileLoader(cfg *config.Config, logger *zap.Logger) *loader.FileLoader {
	files := make([]loader.VolumeFile, len(cfg.Corpus.Volumes))
	for i, v := range cfg.Corpus.Volumes {
		files[i] = loader.VolumeFile{Name: v.Name, Path: v.Path}
	}
	return loader.NewFileLoader(cfg.Corpus.Directory, files, loader.WithLogger(logger))
}

// newVolumeWatcher watches the configured volume files and asks the store to load a
// volume when its file appears or changes. Loaded volumes stay as they are.
func newVolumeWatcher(ctx context.Context, cfg *config.Config, c *Components, logger *zap.Logger) *watcher.Watcher {
	files := make(map[string]string, len(cfg.Corpus.Volumes))
	for _, name := range c.Files.Names() {
		if path, ok := c.Files.Path(name); ok {
			files[name] = path
		}
	}
	return watcher.NewWatcher(files, func(volume string) {
		c.Store.EnsureLoaded(ctx, volume)
	},
		watcher.WithLogger(logger),
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
	)
}

// volumeFiles reports the size of the configured volume files.
type volumeFiles struct {
	files *loader.FileLoader
}

func (v volumeFiles) DiskUsageBytes() (int64, error) {
	var paths []string
	for _, name := range v.files.Names() {
		if p, ok := v.files.Path(name); ok {
			paths = append(paths, p)
		}
	}
	return storage.FileSizes(paths...)
}
