package models

import (
	"time"
)

// EngineConfig describes how to reach the survey snapshot
type EngineConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatasetPath string `yaml:"dataset_path" mapstructure:"dataset_path"`
	// Schema is the name the dataset is attached under. Empty means the
	// tables are reachable unqualified.
	Schema       string        `yaml:"schema" mapstructure:"schema"`
	DSN          string        `yaml:"dsn" mapstructure:"dsn"`
	QueryTimeout time.Duration `yaml:"query_timeout" mapstructure:"query_timeout"`
	CacheEntries int           `yaml:"cache_entries" mapstructure:"cache_entries"`
}

// NeedsSchemaPrefix reports whether table references must be qualified
func (c EngineConfig) NeedsSchemaPrefix() bool {
	return c.Schema != ""
}

// EngineState represents the lifecycle of the query engine
type EngineState int

const (
	Uninitialized EngineState = iota
	Initializing
	Ready
	Failed
)

func (s EngineState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// EngineStatus is a snapshot of the engine for display
type EngineStatus struct {
	State       EngineState
	Driver      string
	Dataset     string
	ReadyAt     time.Time
	InitTime    time.Duration
	Err         error
	CacheHits   uint64
	CacheMisses uint64
}
