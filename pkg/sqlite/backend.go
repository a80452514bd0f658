// Package sqlite provides the public API for the SQLite record store.
// It exposes the factory function while keeping the implementation in
// internal/sqlite.
package sqlite

import (
	"github.com/mesh-intelligence/karte/internal/sqlite"
	"github.com/mesh-intelligence/karte/pkg/types"
)

// NewBackend creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to open it.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/karte",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}

// Open creates a store and attaches it to config in one step.
func Open(config types.Config) (types.Store, error) {
	store := sqlite.NewBackend()
	if err := store.Attach(config); err != nil {
		return nil, err
	}
	return store, nil
}
