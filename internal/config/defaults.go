package config

import "runtime"

// DefaultVolumes is the standard-works corpus in traversal order.
var DefaultVolumes = []VolumeConfig{
	{Name: "Old Testament", Path: "old-testament.json"},
	{Name: "New Testament", Path: "new-testament.json"},
	{Name: "Book of Mormon", Path: "book-of-mormon.json"},
	{Name: "Doctrine and Covenants", Path: "doctrine-and-covenants.json"},
	{Name: "Pearl of Great Price", Path: "pearl-of-great-price.json"},
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestsPerSecond == 0 {
		cfg.Server.RequestsPerSecond = 20
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 40
	}
	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = SourceFiles
	}
	if cfg.Corpus.Directory == "" {
		cfg.Corpus.Directory = "/usr/local/var/seisho/data/volumes"
	}
	if cfg.Corpus.Volumes == nil {
		cfg.Corpus.Volumes = append([]VolumeConfig(nil), DefaultVolumes...)
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/seisho/data/db/corpus.db"
	}
	if cfg.Search.Workers == 0 {
		cfg.Search.Workers = runtime.NumCPU()
	}
	if cfg.Search.DefaultProximityDistance == 0 {
		cfg.Search.DefaultProximityDistance = 5
	}
	if cfg.Search.MinQueryLength == 0 {
		cfg.Search.MinQueryLength = 2
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 500
	}
}
