//go:build !wasm

package store

import "context"

// New creates a store for native builds.
func New(cfg Config) (Store, error) {
	switch {
	case IsMemoryPath(cfg.Path):
		return NewMemory(), nil
	case IsPostgresURL(cfg.Path):
		return NewPostgres(context.Background(), cfg.Path)
	default:
		return NewSQLite(cfg.Path)
	}
}
