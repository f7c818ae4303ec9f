package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/recyclebin/internal/memory"
	"github.com/mesh-intelligence/recyclebin/internal/metrics"
	"github.com/mesh-intelligence/recyclebin/internal/security"
	"github.com/mesh-intelligence/recyclebin/pkg/sqlite"
	"github.com/mesh-intelligence/recyclebin/pkg/trash"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// store is what the CLI needs from a backend.
type store interface {
	types.Persister
	types.Finder
	EnsureRoot(ctx context.Context, rootID string) (*types.Node, error)
}

// session is an opened backend plus a trash manager over it.
type session struct {
	ctx      context.Context
	store    store
	sqlite   sqlite.Backend // nil for the memory backend
	scope    *security.Scope
	manager  *trash.Manager
	registry *prometheus.Registry
}

// open attaches the configured backend, ensures the root node and builds the
// manager. The caller must call close. ctx gains the principal from the
// --user and --roles flags.
func (a *app) open(ctx context.Context) (*session, error) {
	s := &session{
		ctx:      security.WithPrincipal(ctx, security.Principal{Name: a.user, Roles: a.roles}),
		scope:    security.NewScope(),
		registry: prometheus.NewRegistry(),
	}

	switch a.cfg.Backend {
	case types.BackendMemory:
		s.store = memory.NewStore(s.scope)
	case types.BackendSQLite:
		b, err := sqlite.Open(s.ctx, a.cfg, s.scope)
		if err != nil {
			return nil, sysError(fmt.Errorf("open backend: %w", err))
		}
		s.sqlite = b
		s.store = b
	default:
		return nil, fmt.Errorf("backend %q: %w", a.cfg.Backend, types.ErrBackendUnknown)
	}

	if _, err := s.store.EnsureRoot(s.ctx, a.cfg.RootID); err != nil {
		s.close()
		return nil, sysError(fmt.Errorf("ensure root: %w", err))
	}

	opts := []trash.Option{
		trash.WithNavigationMode(a.cfg.Trash.NavigationMode),
		trash.WithLogger(a.logger.With("component", "trash")),
		trash.WithMetrics(metrics.NewTrash(s.registry)),
	}
	if a.cfg.Trash.DefaultPurgeInterval != "" {
		p, err := types.ParsePurgeInterval(a.cfg.Trash.DefaultPurgeInterval)
		if err != nil {
			s.close()
			return nil, err
		}
		opts = append(opts, trash.WithDefaultPurgeInterval(p))
	}
	s.manager = trash.New(s.store, s.store, s.scope, types.StaticHost(a.cfg.RootID), opts...)
	return s, nil
}

func (s *session) close() {
	if s.sqlite != nil {
		s.sqlite.Detach()
	}
}

// node loads the node with the given ID.
func (s *session) node(id string) (*types.Node, error) {
	n, err := s.store.Get(s.ctx, id)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	return n, nil
}
