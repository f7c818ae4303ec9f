package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir(), RootID: "site"}

	b, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Detach()

	root, err := b.Get(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, types.RootType, root.TypeName)

	n := &types.Node{ParentID: root.NodeID, TypeName: "Page", Name: "About"}
	require.NoError(t, b.Save(ctx, n))
	found, err := b.Find(ctx, types.Query{ParentID: root.NodeID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "About", found[0].Name)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil)
	assert.ErrorIs(t, err, types.ErrRootIDEmpty)
}

func TestNewBackend_Detached(t *testing.T) {
	b := NewBackend(nil)
	_, err := b.Get(context.Background(), "x")
	assert.ErrorIs(t, err, types.ErrBackendDetached)
}
