package corpus

import "time"

// State is the load state of one volume.
type State string

const (
	// StateUnloaded means no load has been attempted.
	StateUnloaded State = "unloaded"
	// StateLoaded means the volume is cached.
	StateLoaded State = "loaded"
	// StateFailed means the last load attempt failed. The next EnsureLoaded retries.
	StateFailed State = "failed"
)

// VolumeStatus describes one known volume.
type VolumeStatus struct {
	Name      string    `json:"name"`
	State     State     `json:"state"`
	Books     int       `json:"books,omitempty"`
	Chapters  int       `json:"chapters,omitempty"`
	Verses    int       `json:"verses,omitempty"`
	Digest    string    `json:"digest,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}
