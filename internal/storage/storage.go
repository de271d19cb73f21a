// Package storage persists corpus volumes in SQLite so they can be served without
// re-parsing source files.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/seisho/internal/models"
)

// ErrVolumeNotFound is returned when a volume has not been imported.
var ErrVolumeNotFound = errors.New("volume not found")

// VolumeInfo describes an imported volume.
type VolumeInfo struct {
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	Digest     string    `json:"digest"`
	ImportedAt time.Time `json:"imported_at"`
	Verses     int64     `json:"verses"`
}

// Storage defines corpus persistence operations.
type Storage interface {
	// SaveVolume replaces any stored copy of the volume.
	SaveVolume(ctx context.Context, vol *models.Volume, position int) error
	// Load rebuilds a volume in stored order.
	Load(ctx context.Context, name string) (*models.Volume, error)
	ListVolumes(ctx context.Context) ([]VolumeInfo, error)
	DeleteVolume(ctx context.Context, name string) error

	// Stats
	CountVolumes(ctx context.Context) (int64, error)
	CountVerses(ctx context.Context) (int64, error)

	Close() error
}
