package types

import (
	"slices"
	"time"
)

// Well-known node types.
const (
	RootType           = "RootPage"
	TrashContainerType = "TrashContainer"
)

// Role names granted access to the trash container.
const (
	RoleAdministrators = "Administrators"
	RoleEditors        = "Editors"
)

// Node is a content node in the tree. Children holds the subtree loaded by
// the Persister; it is ordered by SortOrder, then Name.
type Node struct {
	NodeID          string     `json:"node_id"`
	ParentID        string     `json:"parent_id,omitempty"`
	TypeName        string     `json:"type_name"`
	Name            string     `json:"name"`
	Title           string     `json:"title"`
	SortOrder       int        `json:"sort_order"`
	Visible         bool       `json:"visible"`
	AuthorizedRoles []string   `json:"authorized_roles,omitempty"`
	Expires         *time.Time `json:"expires,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Details         Details    `json:"details"`
	Children        []*Node    `json:"children,omitempty"`

	parent *Node
}

// Parent returns the loaded parent node, or nil when the parent was not
// loaded together with this node.
func (n *Node) Parent() *Node {
	return n.parent
}

// AddTo reparents n under parent in memory. The node is removed from the
// Children of its previously loaded parent. The caller persists the change.
func (n *Node) AddTo(parent *Node) {
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = parent
	n.ParentID = parent.NodeID
	parent.Children = append(parent.Children, n)
}

// AdoptChildren links every loaded child back to its parent. Persisters call
// it after hydrating a subtree.
func (n *Node) AdoptChildren() {
	n.Walk(func(x *Node) {
		for _, c := range x.Children {
			c.parent = x
		}
	})
}

func (n *Node) removeChild(child *Node) {
	n.Children = slices.DeleteFunc(n.Children, func(c *Node) bool {
		return c == child
	})
}

// Walk visits n and every loaded descendant in depth-first pre-order. The
// traversal uses an explicit stack, so deep trees do not grow the call stack.
func (n *Node) Walk(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(top)
		for i := len(top.Children) - 1; i >= 0; i-- {
			stack = append(stack, top.Children[i])
		}
	}
}

// Descendants returns every loaded descendant of n in pre-order, excluding n.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Walk(func(x *Node) {
		if x != n {
			out = append(out, x)
		}
	})
	return out
}

// Find returns the loaded node with the given ID in n's subtree.
func (n *Node) Find(id string) (*Node, bool) {
	var found *Node
	n.Walk(func(x *Node) {
		if found == nil && x.NodeID == id {
			found = x
		}
	})
	return found, found != nil
}

// Clone returns a deep copy of n and its loaded subtree. The copy's parent
// link is cleared.
func (n *Node) Clone() *Node {
	c := *n
	c.parent = nil
	c.AuthorizedRoles = slices.Clone(n.AuthorizedRoles)
	if n.Expires != nil {
		e := *n.Expires
		c.Expires = &e
	}
	c.Details = n.Details.Clone()
	c.Children = nil
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = &c
		c.Children = append(c.Children, cc)
	}
	return &c
}

// SortChildren orders the loaded children of every node in the subtree by
// SortOrder, then Name.
func (n *Node) SortChildren() {
	n.Walk(func(x *Node) {
		slices.SortStableFunc(x.Children, func(a, b *Node) int {
			if a.SortOrder != b.SortOrder {
				if a.SortOrder < b.SortOrder {
					return -1
				}
				return 1
			}
			switch {
			case a.Name < b.Name:
				return -1
			case a.Name > b.Name:
				return 1
			}
			return 0
		})
	})
}
