package trash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// ThrowDecision is the result of a pre-throw hook. A zero ThrowDecision
// cancels the throw.
type ThrowDecision struct {
	Proceed bool

	// Substitute, when set, replaces the node being thrown.
	Substitute *types.Node
}

// Proceed lets the throw continue with the current node.
func Proceed() ThrowDecision {
	return ThrowDecision{Proceed: true}
}

// Veto cancels the throw.
func Veto() ThrowDecision {
	return ThrowDecision{}
}

// SubstituteWith continues the throw with n in place of the current node.
func SubstituteWith(n *types.Node) ThrowDecision {
	return ThrowDecision{Proceed: true, Substitute: n}
}

// ThrowingHook runs before a node is thrown.
type ThrowingHook func(ctx context.Context, node *types.Node) ThrowDecision

// ThrownListener runs after a node was thrown and saved.
type ThrownListener func(ctx context.Context, node *types.Node)

// OnThrowing registers a pre-throw hook. Hooks run in registration order and
// each sees the node chosen by the hooks before it.
func (m *Manager) OnThrowing(h ThrowingHook) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.throwing = append(m.throwing, h)
}

// OnThrown registers a post-throw listener.
func (m *Manager) OnThrown(l ThrownListener) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.thrown = append(m.thrown, l)
}

// CanThrow reports whether node may be thrown: the trash is missing or
// enabled, node is not already in it, and its type is throwable. CanThrow
// never creates the container.
func (m *Manager) CanThrow(ctx context.Context, node *types.Node) (bool, error) {
	if node == nil {
		return false, types.ErrInvalidData
	}
	if !m.registry.IsThrowable(node.TypeName) {
		return false, nil
	}
	c, err := m.Container(ctx, false)
	if err != nil {
		return false, err
	}
	if c == nil {
		return true, nil
	}
	if !c.Enabled() {
		return false, nil
	}
	return !inContainer(c, node), nil
}

// IsInTrash reports whether node is a descendant of the trash container.
func (m *Manager) IsInTrash(ctx context.Context, node *types.Node) (bool, error) {
	if node == nil {
		return false, types.ErrInvalidData
	}
	c, err := m.Container(ctx, false)
	if err != nil || c == nil {
		return false, err
	}
	return inContainer(c, node), nil
}

func inContainer(c *types.TrashContainer, node *types.Node) bool {
	if node.NodeID == "" || node.NodeID == c.NodeID {
		return false
	}
	_, ok := c.Find(node.NodeID)
	return ok
}

// Throw moves node and its subtree into the trash. Pre-throw hooks may cancel
// the throw, in which case Throw returns nil and nothing changes, or
// substitute another node. Every node in the thrown subtree is renamed to its
// ID, expired, and stamped with what Restore needs to undo the throw.
//
// When the store refuses the write, Throw returns a *PermissionDeniedError.
func (m *Manager) Throw(ctx context.Context, node *types.Node) (err error) {
	if node == nil {
		return types.ErrInvalidData
	}
	defer func() { m.metrics.RecordThrow(err) }()

	target, proceed := m.runThrowing(ctx, node)
	if !proceed {
		m.metrics.RecordVeto()
		m.logger.Info("throw cancelled by hook", "node_id", node.NodeID)
		return nil
	}
	if target.NodeID == "" {
		return fmt.Errorf("throwing unsaved node: %w", types.ErrInvalidID)
	}
	if !m.registry.IsThrowable(target.TypeName) {
		return fmt.Errorf("throwing node %s (%s): %w", target.NodeID, target.TypeName, types.ErrNotThrowable)
	}

	c, err := m.Container(ctx, true)
	if err != nil {
		if errors.Is(err, types.ErrPermissionDenied) {
			return wrapPermission("throw", target, err)
		}
		return err
	}
	if !c.Enabled() {
		return fmt.Errorf("throwing node %s: %w", target.NodeID, types.ErrTrashDisabled)
	}
	if inContainer(c, target) {
		return fmt.Errorf("throwing node %s: %w", target.NodeID, types.ErrAlreadyInTrash)
	}

	// The caller's node changes only once the store has accepted the throw,
	// so a refused throw can be retried with the same node.
	work := target.Clone()
	expire(work, m.clock())
	work.ParentID = c.NodeID

	if err := m.persister.Save(ctx, work); err != nil {
		if errors.Is(err, types.ErrPermissionDenied) {
			return wrapPermission("throw", target, err)
		}
		return fmt.Errorf("saving thrown node %s: %w", target.NodeID, err)
	}
	copyState(target, work)
	target.AddTo(c.Node)
	m.logger.Info("node thrown", "node_id", target.NodeID, "type", target.TypeName,
		"descendants", len(target.Descendants()))

	m.hooksMu.RLock()
	listeners := append([]ThrownListener(nil), m.thrown...)
	m.hooksMu.RUnlock()
	for _, l := range listeners {
		l(ctx, target)
	}
	return nil
}

func (m *Manager) runThrowing(ctx context.Context, node *types.Node) (*types.Node, bool) {
	m.hooksMu.RLock()
	hooks := append([]ThrowingHook(nil), m.throwing...)
	m.hooksMu.RUnlock()

	target := node
	for _, h := range hooks {
		d := h(ctx, target)
		if !d.Proceed {
			return nil, false
		}
		if d.Substitute != nil {
			target = d.Substitute
		}
	}
	return target, true
}

// expire stamps the trash metadata on top and every loaded descendant.
func expire(top *types.Node, now time.Time) {
	top.Walk(func(n *types.Node) {
		n.MarkThrown(types.ThrownInfo{
			FormerName:     n.Name,
			FormerParentID: n.ParentID,
			FormerExpires:  n.Expires,
			DeletedAt:      now,
		})
		expires := now
		n.Expires = &expires
		n.Name = n.NodeID
	})
}

// copyState copies what expire, unexpire and Save change from src to dst,
// node by node. src must be a clone of dst.
func copyState(dst, src *types.Node) {
	var from []*types.Node
	src.Walk(func(n *types.Node) { from = append(from, n) })

	i := 0
	dst.Walk(func(n *types.Node) {
		s := from[i]
		i++
		n.NodeID = s.NodeID
		n.Name = s.Name
		n.Expires = s.Expires
		n.Details = s.Details
		n.CreatedAt = s.CreatedAt
		n.UpdatedAt = s.UpdatedAt
		if n != dst {
			n.ParentID = s.ParentID
		}
	})
}
