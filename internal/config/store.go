package config

import "path/filepath"

// Preference store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// SQLite drivers. DriverPureGo is modernc.org/sqlite, DriverCgo is
// mattn/go-sqlite3.
const (
	DriverPureGo = "sqlite"
	DriverCgo    = "sqlite3"
)

// ValidBackends lists all supported preference backends.
var ValidBackends = []string{BackendSQLite, BackendFile, BackendMemory}

// ValidDrivers lists all supported SQLite drivers.
var ValidDrivers = []string{DriverPureGo, DriverCgo}

// StoreConfig configures the durable preference store.
type StoreConfig struct {
	Backend      string `yaml:"backend"`       // sqlite, file, memory
	Driver       string `yaml:"driver"`        // sqlite (pure Go), sqlite3 (cgo)
	Path         string `yaml:"path"`          // empty = derived from DefaultDir
	WriteTimeout string `yaml:"write_timeout"` // per background write
}

// ResolvedPath returns Path, or the default location for the backend.
func (s StoreConfig) ResolvedPath() string {
	if s.Path != "" {
		return s.Path
	}
	switch s.Backend {
	case BackendFile:
		return filepath.Join(DefaultDir(), "prefs.yaml")
	case BackendMemory:
		return ""
	}
	return filepath.Join(DefaultDir(), "prefs.db")
}
