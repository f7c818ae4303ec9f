// Package memory implements an in-process node store. It satisfies the same
// Persister and Finder contracts as the SQLite backend and is used for the
// "memory" backend and in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mesh-intelligence/recyclebin/internal/security"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

var (
	_ types.Persister = (*Store)(nil)
	_ types.Finder    = (*Store)(nil)
)

// Store keeps nodes in a flat map keyed by node ID. Stored nodes never hold
// children; subtrees are rebuilt from parent links on every read.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*types.Node
	scope types.SecurityScope
}

// NewStore returns an empty store. Writes are authorized against scope; a nil
// scope allows every write.
func NewStore(scope types.SecurityScope) *Store {
	return &Store{
		nodes: make(map[string]*types.Node),
		scope: scope,
	}
}

// EnsureRoot creates the root node with the given ID when it does not exist.
func (s *Store) EnsureRoot(ctx context.Context, rootID string) (*types.Node, error) {
	if rootID == "" {
		return nil, types.ErrInvalidID
	}
	s.mu.Lock()
	if _, ok := s.nodes[rootID]; !ok {
		now := time.Now().UTC()
		s.nodes[rootID] = &types.Node{
			NodeID:    rootID,
			TypeName:  types.RootType,
			Name:      rootID,
			Title:     rootID,
			Visible:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	s.mu.Unlock()
	return s.Get(ctx, rootID)
}

// Get returns the node and its subtree.
func (s *Store) Get(ctx context.Context, id string) (*types.Node, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked(id)
}

func (s *Store) loadLocked(id string) (*types.Node, error) {
	stored, ok := s.nodes[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	children := s.childIndexLocked()
	top := stored.Clone()
	stack := []*types.Node{top}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, cid := range children[n.NodeID] {
			c := s.nodes[cid].Clone()
			n.Children = append(n.Children, c)
			stack = append(stack, c)
		}
	}
	top.SortChildren()
	top.AdoptChildren()
	return top, nil
}

func (s *Store) childIndexLocked() map[string][]string {
	idx := make(map[string][]string)
	for id, n := range s.nodes {
		if n.ParentID != "" {
			idx[n.ParentID] = append(idx[n.ParentID], id)
		}
	}
	return idx
}

// Save creates or updates node and every loaded descendant.
func (s *Store) Save(ctx context.Context, node *types.Node) error {
	if node == nil {
		return types.ErrInvalidData
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorizeLocked(ctx, node); err != nil {
		return err
	}
	if node.ParentID != "" {
		if _, ok := s.nodes[node.ParentID]; !ok {
			return fmt.Errorf("saving node %s: parent %s: %w", node.NodeID, node.ParentID, types.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	var err error
	node.Walk(func(n *types.Node) {
		if err != nil {
			return
		}
		if n.Name == "" && n.NodeID != "" {
			n.Name = n.NodeID
		}
		if n.NodeID == "" {
			id, genErr := uuid.NewV7()
			if genErr != nil {
				err = fmt.Errorf("generating UUID v7: %w", genErr)
				return
			}
			n.NodeID = id.String()
			if n.Name == "" {
				n.Name = n.NodeID
			}
		}
		for _, c := range n.Children {
			c.ParentID = n.NodeID
		}
		if prev, ok := s.nodes[n.NodeID]; ok {
			n.CreatedAt = prev.CreatedAt
		} else if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.UpdatedAt = now
	})
	if err != nil {
		return err
	}
	node.Walk(func(n *types.Node) {
		flat := n.Clone()
		flat.Children = nil
		s.nodes[n.NodeID] = flat
	})
	return nil
}

// Move reparents node under newParent.
func (s *Store) Move(ctx context.Context, node, newParent *types.Node) error {
	if node == nil || newParent == nil {
		return types.ErrInvalidData
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.nodes[node.NodeID]
	if !ok {
		return fmt.Errorf("moving node %s: %w", node.NodeID, types.ErrNotFound)
	}
	if _, ok := s.nodes[newParent.NodeID]; !ok {
		return fmt.Errorf("moving node %s: destination %s: %w", node.NodeID, newParent.NodeID, types.ErrNotFound)
	}
	if err := s.authorizeLocked(ctx, node); err != nil {
		return err
	}
	if err := s.authorizeLocked(ctx, newParent); err != nil {
		return err
	}
	if slices.Contains(s.subtreeLocked(node.NodeID), newParent.NodeID) {
		return fmt.Errorf("moving node %s under its own descendant: %w", node.NodeID, types.ErrInvalidData)
	}

	stored.ParentID = newParent.NodeID
	stored.UpdatedAt = time.Now().UTC()
	node.AddTo(newParent)
	node.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes node and its subtree.
func (s *Store) Delete(ctx context.Context, node *types.Node) error {
	if node == nil || node.NodeID == "" {
		return types.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.nodes[node.NodeID]
	if !ok {
		return fmt.Errorf("deleting node %s: %w", node.NodeID, types.ErrNotFound)
	}
	if err := s.authorizeLocked(ctx, stored); err != nil {
		return err
	}
	for _, id := range s.subtreeLocked(node.NodeID) {
		delete(s.nodes, id)
	}
	return nil
}

// Find returns the nodes matching q, each loaded with its subtree.
func (s *Store) Find(ctx context.Context, q types.Query) ([]*types.Node, error) {
	for _, c := range q.Details {
		if c.Op != types.OpEqual && c.Op != types.OpLessOrEqual {
			return nil, fmt.Errorf("operator %q: %w", c.Op, types.ErrInvalidQuery)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := lo.Filter(lo.Values(s.nodes), func(n *types.Node, _ int) bool {
		if q.ParentID != "" && n.ParentID != q.ParentID {
			return false
		}
		if q.TypeName != "" && n.TypeName != q.TypeName {
			return false
		}
		for _, c := range q.Details {
			if !matchDetail(n, c) {
				return false
			}
		}
		return true
	})
	if err := sortNodes(matches, q.OrderBy); err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	out := make([]*types.Node, 0, len(matches))
	for _, m := range matches {
		n, err := s.loadLocked(m.NodeID)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Len returns the number of stored nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) authorizeLocked(ctx context.Context, node *types.Node) error {
	if stored, ok := s.nodes[node.NodeID]; ok {
		if err := security.Authorize(ctx, s.scope, stored); err != nil {
			return err
		}
	}
	return security.Authorize(ctx, s.scope, node)
}

// subtreeLocked returns id and the IDs of all stored descendants.
func (s *Store) subtreeLocked(id string) []string {
	children := s.childIndexLocked()
	out := []string{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		stack = append(stack, children[cur]...)
	}
	return out
}

func matchDetail(n *types.Node, c types.DetailCondition) bool {
	v, ok := n.Details.Get(c.Key)
	if !ok {
		return false
	}
	var want types.Details
	if err := want.Set(c.Key, c.Value); err != nil {
		return false
	}
	wv, _ := want.Get(c.Key)
	gotType, gotText := types.EncodeValue(v)
	wantType, wantText := types.EncodeValue(wv)
	if gotType != wantType || gotType == types.ValueTypeNull {
		return false
	}
	cmp := compareEncoded(gotType, gotText, wantText)
	switch c.Op {
	case types.OpEqual:
		return cmp == 0
	case types.OpLessOrEqual:
		return cmp <= 0
	}
	return false
}

func compareEncoded(valueType, a, b string) int {
	switch valueType {
	case types.ValueTypeInt:
		x, _ := strconv.ParseInt(a, 10, 64)
		y, _ := strconv.ParseInt(b, 10, 64)
		return cmpOrdered(x, y)
	case types.ValueTypeFloat:
		x, _ := strconv.ParseFloat(a, 64)
		y, _ := strconv.ParseFloat(b, 64)
		return cmpOrdered(x, y)
	default:
		return strings.Compare(a, b)
	}
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func sortNodes(nodes []*types.Node, orderBy string) error {
	var key func(a, b *types.Node) int
	switch orderBy {
	case "", types.OrderBySortOrder:
		key = func(a, b *types.Node) int {
			if c := cmpOrdered(int64(a.SortOrder), int64(b.SortOrder)); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}
	case types.OrderByName:
		key = func(a, b *types.Node) int { return strings.Compare(a.Name, b.Name) }
	case types.OrderByDeletedDate:
		key = func(a, b *types.Node) int {
			ta, _ := a.DeletedAt()
			tb, _ := b.DeletedAt()
			return ta.Compare(tb)
		}
	default:
		return fmt.Errorf("order by %q: %w", orderBy, types.ErrInvalidQuery)
	}
	slices.SortStableFunc(nodes, func(a, b *types.Node) int {
		if c := key(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.NodeID, b.NodeID)
	})
	return nil
}
