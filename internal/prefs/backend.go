package prefs

import (
	"context"
	"fmt"

	"colormaker/internal/config"
)

// Backend is the durable key-value store the mixer persists to. GetAll
// returns only the keys present; SetAll writes every given key at once.
type Backend interface {
	GetAll(ctx context.Context) (map[string]string, error)
	SetAll(ctx context.Context, values map[string]string) error
	Close() error
}

// OpenBackend opens the backend described by cfg.
func OpenBackend(cfg config.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		driver := cfg.Driver
		if driver == "" {
			driver = config.DriverPureGo
		}
		return NewSQLiteBackend(driver, cfg.ResolvedPath())
	case config.BackendFile:
		return NewFileBackend(cfg.ResolvedPath())
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown preference backend %q", cfg.Backend)
}
