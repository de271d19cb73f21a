// Package loader reads corpus volumes from JSON or OSIS XML files, optionally
// compressed with xz or zstd, and normalizes them into the volume hierarchy.
package loader

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/models"
)

var (
	// ErrUnknownVolume is returned for a volume name with no configured file.
	ErrUnknownVolume = errors.New("unknown volume")
	// ErrUnsupportedFormat is returned when a file is neither JSON nor OSIS XML.
	ErrUnsupportedFormat = errors.New("unsupported volume format")
)

// VolumeFile maps a volume name to its source file.
type VolumeFile struct {
	Name string
	Path string
}

// FileLoader loads volumes from files on disk.
type FileLoader struct {
	dir    string
	files  []VolumeFile
	logger *zap.Logger
}

// Option configures a FileLoader.
type Option func(*FileLoader)

// WithLogger sets the loader's logger.
func WithLogger(l *zap.Logger) Option {
	return func(fl *FileLoader) {
		if l != nil {
			fl.logger = l
		}
	}
}

// NewFileLoader creates a loader for files. Relative paths are resolved against dir.
func NewFileLoader(dir string, files []VolumeFile, opts ...Option) *FileLoader {
	fl := &FileLoader{dir: dir, files: append([]VolumeFile(nil), files...), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(fl)
	}
	return fl
}

// Names returns the configured volume names in order.
func (l *FileLoader) Names() []string {
	names := make([]string, len(l.files))
	for i, f := range l.files {
		names[i] = f.Name
	}
	return names
}

// Path returns the resolved file path for a volume.
func (l *FileLoader) Path(name string) (string, bool) {
	for _, f := range l.files {
		if f.Name == name {
			if filepath.IsAbs(f.Path) || l.dir == "" {
				return f.Path, true
			}
			return filepath.Join(l.dir, f.Path), true
		}
	}
	return "", false
}

// Load reads and parses the named volume. It returns a complete volume or an error.
func (l *FileLoader) Load(ctx context.Context, name string) (*models.Volume, error) {
	path, ok := l.Path(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVolume, name)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read volume %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vol, err := Decode(name, path, raw)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("volume file parsed",
		zap.String("volume", name),
		zap.String("path", path),
		zap.Int("bytes", len(raw)),
	)
	return vol, nil
}

// Decode parses raw file contents named by path into a volume, decompressing by
// suffix and choosing the parser by the remaining extension.
func Decode(name, path string, raw []byte) (*models.Volume, error) {
	data, inner, err := decompress(path, raw)
	if err != nil {
		return nil, fmt.Errorf("decompress volume %s: %w", name, err)
	}
	var vol *models.Volume
	switch strings.ToLower(filepath.Ext(inner)) {
	case ".json":
		vol, err = DecodeJSON(name, data)
	case ".xml", ".osis":
		vol, err = DecodeOSIS(name, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse volume %s: %w", name, err)
	}
	vol.Digest = Digest(raw)
	return vol, nil
}

// Digest returns the BLAKE3 hex digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// decompress strips a .xz or .zst suffix from path and returns the decoded bytes.
func decompress(path string, raw []byte) ([]byte, string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		r, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, "", fmt.Errorf("xz reader: %w", err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", fmt.Errorf("xz read: %w", err)
		}
		return data, path[:len(path)-len(".xz")], nil
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, "", fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		data, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, "", fmt.Errorf("zstd read: %w", err)
		}
		return data, path[:len(path)-len(".zst")], nil
	default:
		return raw, path, nil
	}
}
