// Package indexer imports corpus volumes from a source loader into the corpus database.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/storage"
)

// Importer copies volumes from a source loader into storage.
type Importer struct {
	source  corpus.Loader
	storage storage.Storage
	force   bool
	prune   bool
	logger  *zap.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets a logger for per-volume import events.
func WithLogger(l *zap.Logger) ImporterOption {
	return func(imp *Importer) {
		if l != nil {
			imp.logger = l
		}
	}
}

// WithForce re-imports volumes even when the stored digest matches the source.
func WithForce(force bool) ImporterOption {
	return func(imp *Importer) { imp.force = force }
}

// WithPrune deletes stored volumes that are not among the imported names.
func WithPrune(prune bool) ImporterOption {
	return func(imp *Importer) { imp.prune = prune }
}

// NewImporter creates an importer reading from source and writing to store.
func NewImporter(source corpus.Loader, store storage.Storage, opts ...ImporterOption) *Importer {
	imp := &Importer{source: source, storage: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Result summarizes an import run.
type Result struct {
	Imported []string          `json:"imported"`
	Skipped  []string          `json:"skipped"`
	Removed  []string          `json:"removed,omitempty"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// Import loads each named volume from the source and saves it at its index in names.
// A volume whose digest matches the stored copy is skipped unless forced. A failing
// volume is recorded and does not stop the others. With pruning, stored volumes
// outside names are deleted afterwards.
func (imp *Importer) Import(ctx context.Context, names []string) (*Result, error) {
	stored, err := imp.storage.ListVolumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored volumes: %w", err)
	}
	digests := make(map[string]string, len(stored))
	for _, info := range stored {
		digests[info.Name] = info.Digest
	}

	res := &Result{Failed: map[string]string{}}
	for position, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		skipped, err := imp.importVolume(ctx, name, position, digests[name])
		switch {
		case err != nil:
			res.Failed[name] = err.Error()
			imp.logger.Warn("volume import failed", zap.String("volume", name), zap.Error(err))
		case skipped:
			res.Skipped = append(res.Skipped, name)
			imp.logger.Debug("volume unchanged, skipping", zap.String("volume", name))
		default:
			res.Imported = append(res.Imported, name)
		}
	}
	if imp.prune {
		if err := imp.pruneVolumes(ctx, stored, names, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (imp *Importer) pruneVolumes(ctx context.Context, stored []storage.VolumeInfo, names []string, res *Result) error {
	keep := make(map[string]struct{}, len(names))
	for _, name := range names {
		keep[name] = struct{}{}
	}
	for _, info := range stored {
		if _, ok := keep[info.Name]; ok {
			continue
		}
		if err := imp.storage.DeleteVolume(ctx, info.Name); err != nil {
			return fmt.Errorf("delete volume %s: %w", info.Name, err)
		}
		res.Removed = append(res.Removed, info.Name)
		imp.logger.Info("volume removed", zap.String("volume", info.Name))
	}
	return nil
}

func (imp *Importer) importVolume(ctx context.Context, name string, position int, storedDigest string) (bool, error) {
	vol, err := imp.source.Load(ctx, name)
	if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}
	if !imp.force && vol.Digest != "" && vol.Digest == storedDigest {
		return true, nil
	}
	if vol.Name == "" {
		vol.Name = name
	}
	if err := imp.storage.SaveVolume(ctx, vol, position); err != nil {
		return false, fmt.Errorf("save: %w", err)
	}
	books, chapters, verses := vol.Counts()
	imp.logger.Info("volume imported",
		zap.String("volume", name),
		zap.Int("books", books),
		zap.Int("chapters", chapters),
		zap.Int("verses", verses),
	)
	return false, nil
}
