// Package sqlite provides the public API for the SQLite node store.
// This package exposes factory functions for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/recyclebin/internal/sqlite"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// Backend is a SQLite node store with an Attach/Detach lifecycle and JSONL
// export and import.
type Backend interface {
	types.Persister
	types.Finder

	Attach(config types.Config) error
	Detach() error
	EnsureRoot(ctx context.Context, rootID string) (*types.Node, error)
	ExportJSONL(ctx context.Context, dir string) (int, error)
	ImportJSONL(ctx context.Context, path string) (int, error)
}

var _ Backend = (*sqlite.Backend)(nil)

// ExportFile is the name of the file written by ExportJSONL.
const ExportFile = sqlite.ExportFile

// NewBackend creates a new SQLite backend whose permission checks follow
// scope. A nil scope disables them. The backend is not attached; call Attach
// with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend(scope)
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".recyclebin-db",
//	    RootID:  types.DefaultRootID,
//	})
//	defer backend.Detach()
func NewBackend(scope types.SecurityScope) Backend {
	return sqlite.NewBackend(scope)
}

// Open creates a backend, attaches it to config and ensures the root node
// named by config.RootID exists.
func Open(ctx context.Context, config types.Config, scope types.SecurityScope) (Backend, error) {
	b := sqlite.NewBackend(scope)
	if err := b.Attach(config); err != nil {
		return nil, err
	}
	if _, err := b.EnsureRoot(ctx, config.RootID); err != nil {
		b.Detach()
		return nil, err
	}
	return b, nil
}
