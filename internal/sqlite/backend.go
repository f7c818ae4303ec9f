// Package sqlite implements the SQLite storage backend for recyclebin. The
// Backend is both the Persister and the Finder consumed by the trash manager.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// DatabaseFile is the name of the database file inside the data directory.
const DatabaseFile = "recyclebin.db"

var (
	_ types.Persister = (*Backend)(nil)
	_ types.Finder    = (*Backend)(nil)
)

// Backend stores nodes in SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	scope    types.SecurityScope
	logger   *slog.Logger
}

// NewBackend creates a new SQLite backend instance. Writes are authorized
// against scope; a nil scope allows every write. The backend is not
// attached; call Attach with a Config to initialize.
func NewBackend(scope types.SecurityScope) *Backend {
	return &Backend{
		scope:  scope,
		logger: slog.Default().With("component", "sqlite"),
	}
}

// Attach opens (or creates) the database in config.DataDir and applies the
// schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// SQLite serializes writers; one connection keeps pragmas and
	// transactions consistent.
	db.SetMaxOpenConns(1)

	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	b.logger.Debug("backend attached", "path", dbPath)
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.logger.Debug("backend detached")
	return nil
}

// EnsureRoot creates the root node when it does not exist and returns it.
func (b *Backend) EnsureRoot(ctx context.Context, rootID string) (*types.Node, error) {
	if rootID == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	now := types.FormatTime(time.Now())
	_, err := b.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO nodes (node_id, parent_id, type_name, name, title, sort_order,
            visible, authorized_roles, expires, created_at, updated_at)
         VALUES (?, NULL, ?, ?, ?, 0, 1, '[]', NULL, ?, ?)`,
		rootID, types.RootType, rootID, rootID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating root %s: %w", rootID, err)
	}
	return b.load(ctx, b.db, rootID)
}

// generateUUID generates a new UUID v7 for node IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
