package trash

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/recyclebin/internal/metrics"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// Manager throws, restores and purges nodes.
type Manager struct {
	persister types.Persister
	finder    types.Finder
	scope     types.SecurityScope
	host      types.Host

	registry        *types.TypeRegistry
	navigation      bool
	now             func() time.Time
	logger          *slog.Logger
	metrics         *metrics.Trash
	defaultInterval types.PurgeInterval

	hooksMu  sync.RWMutex
	throwing []ThrowingHook
	thrown   []ThrownListener
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry sets the type capability registry. The default registry marks
// the root and the trash container as not throwable.
func WithRegistry(r *types.TypeRegistry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithNavigationMode makes lookups walk the loaded tree instead of issuing
// finder queries.
func WithNavigationMode(enabled bool) Option {
	return func(m *Manager) { m.navigation = enabled }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics records operations on mt.
func WithMetrics(mt *metrics.Trash) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithDefaultPurgeInterval sets the retention window stamped on a newly
// created trash container.
func WithDefaultPurgeInterval(p types.PurgeInterval) Option {
	return func(m *Manager) { m.defaultInterval = p }
}

// New returns a Manager over the given collaborators. finder may be nil when
// navigation mode is enabled.
func New(persister types.Persister, finder types.Finder, scope types.SecurityScope, host types.Host, opts ...Option) *Manager {
	m := &Manager{
		persister:       persister,
		finder:          finder,
		scope:           scope,
		host:            host,
		registry:        types.DefaultRegistry(),
		now:             time.Now,
		logger:          slog.Default().With("component", "trash"),
		defaultInterval: types.PurgeMonthly,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NavigationMode reports whether lookups walk the tree.
func (m *Manager) NavigationMode() bool {
	return m.navigation
}

// DefaultPurgeInterval returns the retention window a new container gets.
func (m *Manager) DefaultPurgeInterval() types.PurgeInterval {
	return m.defaultInterval
}

// Registry returns the type capability registry.
func (m *Manager) Registry() *types.TypeRegistry {
	return m.registry
}

func (m *Manager) clock() time.Time {
	return m.now().UTC()
}
