// Package security implements the permission scope consulted by the node
// stores: a process-wide enforcement toggle and the principal carried in a
// request context.
package security

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

var _ types.SecurityScope = (*Scope)(nil)

// Scope toggles permission enforcement. Enforcement is on for a new Scope.
type Scope struct {
	disabled atomic.Bool
}

// NewScope returns an enforcing scope.
func NewScope() *Scope {
	return &Scope{}
}

// Enabled reports whether permission checks are enforced.
func (s *Scope) Enabled() bool {
	return !s.disabled.Load()
}

// SetEnabled turns enforcement on or off.
func (s *Scope) SetEnabled(enabled bool) {
	s.disabled.Store(!enabled)
}

// Principal is the caller on whose behalf an operation runs.
type Principal struct {
	Name  string
	Roles []string
}

// IsAdministrator reports whether p holds the administrators role.
func (p Principal) IsAdministrator() bool {
	return slices.Contains(p.Roles, types.RoleAdministrators)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal carried by ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authorize decides whether the principal in ctx may write node. Writes are
// allowed when the scope is nil or disabled, when the node is unrestricted,
// when the principal is an administrator, or when the principal shares a role
// with the node. A denial wraps types.ErrPermissionDenied.
func Authorize(ctx context.Context, scope types.SecurityScope, node *types.Node) error {
	if scope == nil || !scope.Enabled() {
		return nil
	}
	if len(node.AuthorizedRoles) == 0 {
		return nil
	}
	p, ok := PrincipalFrom(ctx)
	if ok && (p.IsAdministrator() || len(lo.Intersect(p.Roles, node.AuthorizedRoles)) > 0) {
		return nil
	}
	who := "anonymous"
	if ok && p.Name != "" {
		who = p.Name
	}
	return fmt.Errorf("%s may not modify node %s: %w", who, node.NodeID, types.ErrPermissionDenied)
}
