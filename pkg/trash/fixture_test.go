package trash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recyclebin/internal/logging"
	"github.com/mesh-intelligence/recyclebin/internal/memory"
	"github.com/mesh-intelligence/recyclebin/internal/security"
	"github.com/mesh-intelligence/recyclebin/internal/sqlite"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// day returns midnight of day n counted from epoch.
func day(n int) time.Time {
	return epoch.Add(time.Duration(n) * 24 * time.Hour)
}

type mode struct {
	name       string
	navigation bool
	sqlite     bool
}

var modes = []mode{
	{name: "query", navigation: false},
	{name: "navigation", navigation: true},
	{name: "sqlite/query", navigation: false, sqlite: true},
	{name: "sqlite/navigation", navigation: true, sqlite: true},
}

// store is the backend a fixture runs the manager against.
type store interface {
	types.Persister
	types.Finder
	EnsureRoot(ctx context.Context, rootID string) (*types.Node, error)
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store store
	scope *security.Scope
	mgr   *Manager
	root  *types.Node
	now   time.Time
}

// newFixture runs the manager over the memory store.
func newFixture(t *testing.T, navigation bool, opts ...Option) *fixture {
	t.Helper()
	return newModeFixture(t, mode{navigation: navigation}, opts...)
}

func newModeFixture(t *testing.T, md mode, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), scope: security.NewScope(), now: epoch}
	if md.sqlite {
		b := sqlite.NewBackend(f.scope)
		require.NoError(t, b.Attach(types.Config{
			Backend: types.BackendSQLite,
			DataDir: t.TempDir(),
			RootID:  types.DefaultRootID,
		}))
		t.Cleanup(func() { b.Detach() })
		f.store = b
	} else {
		f.store = memory.NewStore(f.scope)
	}
	root, err := f.store.EnsureRoot(f.ctx, types.DefaultRootID)
	require.NoError(t, err)
	f.root = root

	opts = append([]Option{
		WithNavigationMode(md.navigation),
		WithClock(func() time.Time { return f.now }),
		WithLogger(logging.Discard()),
	}, opts...)
	f.mgr = New(f.store, f.store, f.scope, types.StaticHost(root.NodeID), opts...)
	return f
}

// add saves a new page named name under parent and returns it reloaded.
func (f *fixture) add(parent *types.Node, name string) *types.Node {
	f.t.Helper()
	n := &types.Node{
		ParentID: parent.NodeID,
		TypeName: "Page",
		Name:     name,
		Title:    name,
		Visible:  true,
	}
	require.NoError(f.t, f.store.Save(f.ctx, n))
	return f.get(n.NodeID)
}

func (f *fixture) get(id string) *types.Node {
	f.t.Helper()
	n, err := f.store.Get(f.ctx, id)
	require.NoError(f.t, err)
	return n
}

// count returns the number of stored nodes in the tree.
func (f *fixture) count() int {
	f.t.Helper()
	n := 0
	f.get(f.root.NodeID).Walk(func(*types.Node) { n++ })
	return n
}

func (f *fixture) exists(id string) bool {
	_, err := f.store.Get(f.ctx, id)
	return err == nil
}

// throwAt throws the stored node id with the clock set to at.
func (f *fixture) throwAt(id string, at time.Time) {
	f.t.Helper()
	f.now = at
	require.NoError(f.t, f.mgr.Throw(f.ctx, f.get(id)))
}

func (f *fixture) container() *types.TrashContainer {
	f.t.Helper()
	c, err := f.mgr.Container(f.ctx, false)
	require.NoError(f.t, err)
	require.NotNil(f.t, c)
	return c
}
