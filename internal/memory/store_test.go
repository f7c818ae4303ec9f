package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recyclebin/internal/security"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func newStore(t *testing.T, scope types.SecurityScope) (*Store, *types.Node) {
	t.Helper()
	s := NewStore(scope)
	root, err := s.EnsureRoot(context.Background(), types.DefaultRootID)
	require.NoError(t, err)
	return s, root
}

func page(parentID, name string) *types.Node {
	return &types.Node{ParentID: parentID, TypeName: "Page", Name: name}
}

func TestStore_SaveAssignsIDs(t *testing.T) {
	s, root := newStore(t, nil)
	ctx := context.Background()

	n := page(root.NodeID, "")
	child := page("", "Child")
	n.Children = []*types.Node{child}
	require.NoError(t, s.Save(ctx, n))

	id, err := uuid.Parse(n.NodeID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, n.NodeID, n.Name, "empty names default to the ID")
	assert.Equal(t, n.NodeID, child.ParentID)
	assert.Equal(t, 3, s.Len())
}

func TestStore_GetReturnsCopies(t *testing.T) {
	s, root := newStore(t, nil)
	ctx := context.Background()

	n := page(root.NodeID, "A")
	require.NoError(t, n.Details.Set("k", "v"))
	require.NoError(t, s.Save(ctx, n))

	got, err := s.Get(ctx, n.NodeID)
	require.NoError(t, err)
	got.Name = "changed"
	got.Details.Delete("k")

	again, err := s.Get(ctx, n.NodeID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.True(t, again.Details.Has("k"))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestStore_SavePreservesCreatedAt(t *testing.T) {
	s, root := newStore(t, nil)
	ctx := context.Background()

	n := page(root.NodeID, "A")
	require.NoError(t, s.Save(ctx, n))
	created := n.CreatedAt

	n.CreatedAt = time.Time{}
	require.NoError(t, s.Save(ctx, n))
	assert.True(t, created.Equal(n.CreatedAt))
}

func TestStore_MoveAndDelete(t *testing.T) {
	s, root := newStore(t, nil)
	ctx := context.Background()

	a := page(root.NodeID, "A")
	require.NoError(t, s.Save(ctx, a))
	b := page(root.NodeID, "B")
	require.NoError(t, s.Save(ctx, b))
	leaf := page(a.NodeID, "Leaf")
	require.NoError(t, s.Save(ctx, leaf))

	require.NoError(t, s.Move(ctx, a, b))
	got, err := s.Get(ctx, b.NodeID)
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	require.Len(t, got.Children[0].Children, 1)
	assert.Equal(t, leaf.NodeID, got.Children[0].Children[0].NodeID)

	assert.ErrorIs(t, s.Move(ctx, b, leaf), types.ErrInvalidData)
	assert.ErrorIs(t, s.Move(ctx, leaf, &types.Node{NodeID: "ghost"}), types.ErrNotFound)

	require.NoError(t, s.Delete(ctx, b))
	assert.Equal(t, 1, s.Len())
	assert.ErrorIs(t, s.Delete(ctx, b), types.ErrNotFound)
}

func TestStore_Permissions(t *testing.T) {
	scope := security.NewScope()
	s, root := newStore(t, scope)
	ctx := context.Background()
	admin := security.WithPrincipal(ctx, security.Principal{Roles: []string{types.RoleAdministrators}})

	n := page(root.NodeID, "Locked")
	n.AuthorizedRoles = []string{"Owners"}
	assert.ErrorIs(t, s.Save(ctx, n), types.ErrPermissionDenied)
	require.NoError(t, s.Save(admin, n))

	assert.ErrorIs(t, s.Delete(ctx, n), types.ErrPermissionDenied)
	scope.SetEnabled(false)
	assert.NoError(t, s.Delete(ctx, n))
}

func TestStore_Find(t *testing.T) {
	s, root := newStore(t, nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"c", "a", "b"} {
		n := page(root.NodeID, name)
		require.NoError(t, n.Details.Set(types.DetailDeletedDate, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, n.Details.Set("Rank", i))
		require.NoError(t, s.Save(ctx, n))
	}
	names := func(nodes []*types.Node) []string {
		return lo.Map(nodes, func(n *types.Node, _ int) string { return n.Name })
	}

	tests := []struct {
		name  string
		query types.Query
		want  []string
	}{
		{name: "by parent sorted by name", query: types.Query{ParentID: root.NodeID}, want: []string{"a", "b", "c"}},
		{name: "by deletion date", query: types.Query{ParentID: root.NodeID, OrderBy: types.OrderByDeletedDate}, want: []string{"c", "a", "b"}},
		{
			name: "time threshold inclusive",
			query: types.Query{Details: []types.DetailCondition{
				{Key: types.DetailDeletedDate, Op: types.OpLessOrEqual, Value: base.Add(time.Hour)},
			}, OrderBy: types.OrderByDeletedDate},
			want: []string{"c", "a"},
		},
		{
			name:  "integer equality",
			query: types.Query{Details: []types.DetailCondition{{Key: "Rank", Op: types.OpEqual, Value: 2}}},
			want:  []string{"b"},
		},
		{name: "type filter", query: types.Query{TypeName: types.RootType}, want: []string{types.DefaultRootID}},
		{name: "limit", query: types.Query{ParentID: root.NodeID, Limit: 1}, want: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Find(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	_, err := s.Find(ctx, types.Query{Details: []types.DetailCondition{{Key: "Rank", Op: "gt", Value: 1}}})
	assert.ErrorIs(t, err, types.ErrInvalidQuery)
	_, err = s.Find(ctx, types.Query{OrderBy: "size"})
	assert.ErrorIs(t, err, types.ErrInvalidQuery)
}
