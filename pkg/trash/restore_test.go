package trash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recyclebin/internal/security"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func TestRestore_FormerParentGone(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			f := newModeFixture(t, mode)
			parent := f.add(f.root, "Folder")
			page := f.add(parent, "Page")
			f.throwAt(page.NodeID, epoch)
			require.NoError(t, f.store.Delete(f.ctx, f.get(parent.NodeID)))

			thrown := f.get(page.NodeID)
			err := f.mgr.Restore(f.ctx, thrown)
			assert.ErrorIs(t, err, types.ErrFormerParentGone)

			stored := f.get(page.NodeID)
			assert.Equal(t, f.container().NodeID, stored.ParentID)
			assert.Equal(t, stored.NodeID, stored.Name)
			_, ok := stored.Thrown()
			assert.True(t, ok, "metadata is kept for a later restore")
			_, ok = thrown.Thrown()
			assert.True(t, ok, "in-memory node is untouched")
		})
	}
}

func TestRestore_NotThrown(t *testing.T) {
	f := newFixture(t, false)
	page := f.add(f.root, "Page")

	err := f.mgr.Restore(f.ctx, page)
	assert.ErrorIs(t, err, types.ErrNotThrown)

	require.NoError(t, page.Details.Set(types.DetailFormerName, "Old"))
	err = f.mgr.Restore(f.ctx, page)
	assert.ErrorIs(t, err, types.ErrPartialTrashMetadata)
}

func TestRestore_IntoRenamedParent(t *testing.T) {
	f := newFixture(t, false)
	parent := f.add(f.root, "Drafts")
	page := f.add(parent, "Page")
	f.throwAt(page.NodeID, epoch)

	renamed := f.get(parent.NodeID)
	renamed.Name = "Published"
	require.NoError(t, f.store.Save(f.ctx, renamed))

	require.NoError(t, f.mgr.Restore(f.ctx, f.get(page.NodeID)))
	assert.Equal(t, parent.NodeID, f.get(page.NodeID).ParentID)
}

func TestRestore_SubtreeStaysIntact(t *testing.T) {
	f := newFixture(t, true)
	top := f.add(f.root, "Top")
	mid := f.add(top, "Mid")
	leaf := f.add(mid, "Leaf")

	f.throwAt(top.NodeID, epoch)
	require.NoError(t, f.mgr.Restore(f.ctx, f.get(top.NodeID)))

	restored := f.get(top.NodeID)
	require.Len(t, restored.Children, 1)
	require.Len(t, restored.Children[0].Children, 1)
	assert.Equal(t, "Mid", restored.Children[0].Name)
	assert.Equal(t, leaf.NodeID, restored.Children[0].Children[0].NodeID)
	assert.Equal(t, "Leaf", restored.Children[0].Children[0].Name)

	items, err := f.mgr.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRestore_MoveRefusedKeepsItemInTrash(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			f := newModeFixture(t, mode)
			admin := security.WithPrincipal(f.ctx, security.Principal{Name: "root", Roles: []string{types.RoleAdministrators}})
			editor := security.WithPrincipal(f.ctx, security.Principal{Name: "bob", Roles: []string{types.RoleEditors}})

			finance := &types.Node{ParentID: f.root.NodeID, TypeName: "Folder", Name: "Finance", AuthorizedRoles: []string{"Accountants"}}
			require.NoError(t, f.store.Save(admin, finance))
			page := &types.Node{ParentID: finance.NodeID, TypeName: "Page", Name: "Budget", Visible: true}
			require.NoError(t, f.store.Save(admin, page))
			require.NoError(t, f.mgr.Throw(admin, f.get(page.NodeID)))

			thrown := f.get(page.NodeID)
			err := f.mgr.Restore(editor, thrown)
			require.Error(t, err)
			var pde *PermissionDeniedError
			require.True(t, errors.As(err, &pde))
			assert.Equal(t, "restore", pde.Op)
			assert.ErrorIs(t, err, types.ErrPermissionDenied)

			c := f.container()
			stored := f.get(page.NodeID)
			assert.Equal(t, c.NodeID, stored.ParentID)
			assert.Equal(t, stored.NodeID, stored.Name)
			assert.NotNil(t, stored.Expires)
			info, ok := stored.Thrown()
			require.True(t, ok, "trash metadata survives the refused move")
			assert.Equal(t, "Budget", info.FormerName)
			assert.Equal(t, finance.NodeID, info.FormerParentID)
			in, err := f.mgr.IsInTrash(f.ctx, stored)
			require.NoError(t, err)
			assert.True(t, in)
			assert.Equal(t, page.NodeID, thrown.Name, "in-memory node is untouched")

			require.NoError(t, f.mgr.Restore(admin, f.get(page.NodeID)))
			stored = f.get(page.NodeID)
			assert.Equal(t, "Budget", stored.Name)
			assert.Equal(t, finance.NodeID, stored.ParentID)
			assert.Nil(t, stored.Expires)
			_, ok = stored.Thrown()
			assert.False(t, ok)
		})
	}
}
