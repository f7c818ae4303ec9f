package trash

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// PurgeOldItems permanently deletes thrown items whose deletion date is at
// or before now minus the container's purge interval. It returns the number
// of items deleted. Security checks are suspended for the sweep and switched
// back on afterwards, also when a delete fails. The first failing delete
// aborts the sweep.
func (m *Manager) PurgeOldItems(ctx context.Context) (count int, err error) {
	start := time.Now()

	c, err := m.Container(ctx, false)
	if err != nil {
		return 0, err
	}
	if c == nil {
		m.logger.Debug("no trash container, nothing to purge")
		return 0, nil
	}
	interval := c.PurgeInterval()
	if interval.IsNever() {
		m.logger.Debug("purge interval is never, nothing to purge")
		return 0, nil
	}
	defer func() { m.metrics.RecordPurge(count, time.Since(start).Seconds(), err) }()

	threshold := m.clock().Add(-time.Duration(interval.Days()) * 24 * time.Hour)
	candidates, err := m.expired(ctx, c, threshold)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	if m.scope != nil {
		m.scope.SetEnabled(false)
		defer m.scope.SetEnabled(true)
	}
	for _, n := range candidates {
		if err := m.persister.Delete(ctx, n); err != nil {
			return count, fmt.Errorf("purging node %s: %w", n.NodeID, err)
		}
		count++
	}
	m.logger.Info("trash purged", "deleted", count, "threshold", threshold, "interval", interval.String())
	return count, nil
}

// expired returns the thrown items deleted at or before threshold.
func (m *Manager) expired(ctx context.Context, c *types.TrashContainer, threshold time.Time) ([]*types.Node, error) {
	if m.navigation {
		// Descendants of a selected item go with it and are not listed.
		var out []*types.Node
		stack := slices.Clone(c.Children)
		slices.Reverse(stack)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if at, ok := n.DeletedAt(); ok && !at.After(threshold) {
				out = append(out, n)
				continue
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
		return out, nil
	}

	found, err := m.finder.Find(ctx, types.Query{
		ParentID: c.NodeID,
		Details: []types.DetailCondition{
			{Key: types.DetailDeletedDate, Op: types.OpLessOrEqual, Value: threshold},
		},
		OrderBy: types.OrderByDeletedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("finding expired items: %w", err)
	}
	return found, nil
}

// List returns the items directly inside the trash, oldest deletion first.
func (m *Manager) List(ctx context.Context) ([]*types.Node, error) {
	c, err := m.Container(ctx, false)
	if err != nil || c == nil {
		return nil, err
	}
	if m.navigation {
		items := slices.Clone(c.Children)
		slices.SortStableFunc(items, func(a, b *types.Node) int {
			ta, _ := a.DeletedAt()
			tb, _ := b.DeletedAt()
			return ta.Compare(tb)
		})
		return items, nil
	}
	items, err := m.finder.Find(ctx, types.Query{
		ParentID: c.NodeID,
		OrderBy:  types.OrderByDeletedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}
	return items, nil
}

// Purge permanently deletes one item from the trash under normal security.
func (m *Manager) Purge(ctx context.Context, node *types.Node) error {
	if node == nil {
		return types.ErrInvalidData
	}
	in, err := m.IsInTrash(ctx, node)
	if err != nil {
		return err
	}
	if !in {
		return fmt.Errorf("purging node %s: %w", node.NodeID, types.ErrNotThrown)
	}
	if err := m.persister.Delete(ctx, node); err != nil {
		if errors.Is(err, types.ErrPermissionDenied) {
			return wrapPermission("purge", node, err)
		}
		return fmt.Errorf("purging node %s: %w", node.NodeID, err)
	}
	m.logger.Info("node purged", "node_id", node.NodeID)
	return nil
}
