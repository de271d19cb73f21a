// Package corpus owns the lazily loaded, process-wide cache of corpus volumes.
package corpus

import (
	"context"
	"fmt"

	"github.com/hyperjump/seisho/internal/models"
)

// Loader produces a fully built volume for a volume name. Implementations must
// return either a complete volume or an error, never a partial volume.
type Loader interface {
	Load(ctx context.Context, name string) (*models.Volume, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, name string) (*models.Volume, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, name string) (*models.Volume, error) {
	return f(ctx, name)
}

// StaticLoader serves volumes that are already in memory. Used by tests and by
// callers that materialize the corpus themselves.
type StaticLoader map[string]*models.Volume

// Load returns the named volume or an error when it is not present.
func (l StaticLoader) Load(_ context.Context, name string) (*models.Volume, error) {
	vol, ok := l[name]
	if !ok {
		return nil, fmt.Errorf("volume not available: %s", name)
	}
	return vol, nil
}
