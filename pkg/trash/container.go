package trash

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// ContainerSortOrder places the trash container after ordinary siblings
// while leaving room for nodes that must sort below it.
const ContainerSortOrder = math.MaxInt32 - 1000000

// Container returns the trash container under the site root. When none
// exists it returns nil, or creates and saves one if create is true.
func (m *Manager) Container(ctx context.Context, create bool) (*types.TrashContainer, error) {
	rootID := m.host.RootID()

	c, err := m.findContainer(ctx, rootID)
	if err != nil || c != nil || !create {
		return c, err
	}

	n := &types.Node{
		ParentID:        rootID,
		TypeName:        types.TrashContainerType,
		Name:            types.TrashName,
		Title:           types.TrashName,
		Visible:         false,
		SortOrder:       ContainerSortOrder,
		AuthorizedRoles: []string{types.RoleAdministrators, types.RoleEditors},
	}
	c = &types.TrashContainer{Node: n}
	c.SetEnabled(true)
	c.SetPurgeInterval(m.defaultInterval)
	if err := m.persister.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("creating trash container: %w", err)
	}
	m.logger.Info("trash container created", "node_id", n.NodeID, "root_id", rootID)
	return c, nil
}

func (m *Manager) findContainer(ctx context.Context, rootID string) (*types.TrashContainer, error) {
	if m.navigation {
		root, err := m.persister.Get(ctx, rootID)
		if err != nil {
			return nil, fmt.Errorf("loading root %s: %w", rootID, err)
		}
		n, ok := lo.Find(root.Children, func(c *types.Node) bool {
			return c.TypeName == types.TrashContainerType
		})
		if !ok {
			return nil, nil
		}
		c, _ := types.AsTrashContainer(n)
		return c, nil
	}

	found, err := m.finder.Find(ctx, types.Query{
		ParentID: rootID,
		TypeName: types.TrashContainerType,
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("finding trash container: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	c, _ := types.AsTrashContainer(found[0])
	return c, nil
}

// Configure updates the enabled flag and retention window of the trash
// container, creating it if needed.
func (m *Manager) Configure(ctx context.Context, enabled bool, interval types.PurgeInterval) (*types.TrashContainer, error) {
	if interval < 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidPurgeInterval, int(interval))
	}
	c, err := m.Container(ctx, true)
	if err != nil {
		return nil, err
	}

	// Save only the container row; its thrown items stay as they are.
	settings := c.Clone()
	settings.Children = nil
	sc := &types.TrashContainer{Node: settings}
	sc.SetEnabled(enabled)
	sc.SetPurgeInterval(interval)
	if err := m.persister.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("saving trash settings: %w", err)
	}

	c.SetEnabled(enabled)
	c.SetPurgeInterval(interval)
	m.logger.Info("trash configured", "enabled", enabled, "purge_interval", interval.String())
	return c, nil
}
