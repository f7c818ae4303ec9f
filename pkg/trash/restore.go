package trash

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// Restore reverses a throw: node and its subtree get their names and
// expirations back, lose the trash metadata, and node moves under its former
// parent. If the former parent no longer exists Restore returns
// ErrFormerParentGone and changes nothing. When the store refuses the move,
// the trash metadata is saved back and the node stays in the trash.
func (m *Manager) Restore(ctx context.Context, node *types.Node) (err error) {
	if node == nil {
		return types.ErrInvalidData
	}
	defer func() { m.metrics.RecordRestore(err) }()

	info, ok := node.Thrown()
	if !ok {
		if err := node.CheckThrownInvariant(); err != nil {
			return fmt.Errorf("restoring node %s: %w", node.NodeID, err)
		}
		return fmt.Errorf("restoring node %s: %w", node.NodeID, types.ErrNotThrown)
	}
	if info.FormerParentID == "" {
		return fmt.Errorf("restoring node %s: %w", node.NodeID, types.ErrFormerParentGone)
	}

	parent, err := m.persister.Get(ctx, info.FormerParentID)
	if errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("restoring node %s to %s: %w", node.NodeID, info.FormerParentID, types.ErrFormerParentGone)
	}
	if err != nil {
		return fmt.Errorf("loading former parent %s: %w", info.FormerParentID, err)
	}

	work := node.Clone()
	work.Walk(unexpire)

	if err := m.persister.Save(ctx, work); err != nil {
		return m.restoreError(node, "saving restored node", err)
	}
	if err := m.persister.Move(ctx, node, parent); err != nil {
		// node still carries the trash metadata; write it back so the item
		// stays restorable and purgeable.
		if rerr := m.persister.Save(ctx, node); rerr != nil {
			err = errors.Join(err, fmt.Errorf("reverting restore of %s: %w", node.NodeID, rerr))
		}
		return m.restoreError(node, "moving restored node", err)
	}
	copyState(node, work)
	m.logger.Info("node restored", "node_id", node.NodeID, "parent_id", parent.NodeID)
	return nil
}

func (m *Manager) restoreError(node *types.Node, step string, err error) error {
	if errors.Is(err, types.ErrPermissionDenied) {
		return wrapPermission("restore", node, err)
	}
	return fmt.Errorf("%s %s: %w", step, node.NodeID, err)
}

// unexpire puts back the name and expiration stashed by expire. Nodes
// without trash metadata are left alone.
func unexpire(n *types.Node) {
	info, ok := n.Thrown()
	if !ok {
		return
	}
	n.Name = info.FormerName
	n.Expires = info.FormerExpires
	n.ClearThrown()
}
