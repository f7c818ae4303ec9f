package types

import "context"

// Persister stores nodes durably. Get loads the node together with its
// subtree. Save persists the node and its loaded subtree. Save, Move and
// Delete return an error wrapping ErrPermissionDenied when the security scope
// forbids the operation.
type Persister interface {
	// Get returns the node with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Node, error)

	// Save creates or updates the node. New nodes (empty NodeID) receive a
	// generated UUID v7.
	Save(ctx context.Context, node *Node) error

	// Move reparents node under newParent.
	Move(ctx context.Context, node, newParent *Node) error

	// Delete permanently removes node and its subtree.
	Delete(ctx context.Context, node *Node) error
}

// Comparison operators for detail conditions.
const (
	OpEqual       = "eq"
	OpLessOrEqual = "le"
)

// Query orderings.
const (
	OrderBySortOrder   = "sort_order"
	OrderByName        = "name"
	OrderByDeletedDate = "deleted_date"
)

// DetailCondition compares the detail stored under Key with Value.
type DetailCondition struct {
	Key   string
	Op    string
	Value any
}

// Query selects nodes. Empty fields do not constrain the result. A zero Limit
// returns every match.
type Query struct {
	ParentID string
	TypeName string
	Details  []DetailCondition
	Limit    int
	OrderBy  string
}

// Finder runs structured queries over stored nodes. Result nodes are loaded
// with their subtrees.
type Finder interface {
	Find(ctx context.Context, q Query) ([]*Node, error)
}

// SecurityScope toggles enforcement of permission checks.
type SecurityScope interface {
	Enabled() bool
	SetEnabled(enabled bool)
}

// Host exposes the root of the current site.
type Host interface {
	RootID() string
}

// StaticHost is a Host with a fixed root ID.
type StaticHost string

// RootID returns the root node ID.
func (h StaticHost) RootID() string {
	return string(h)
}
