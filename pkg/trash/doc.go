// Package trash implements soft delete for the content tree. Thrown nodes are
// parked under a single trash container below the site root, stripped of
// their names and stamped with the bookkeeping needed to restore them. A purge
// sweep permanently deletes items whose deletion date falls outside the
// container's retention window.
//
// The Manager is stateless per call apart from its registered hooks; it is
// safe for concurrent use when the Persister serializes conflicting writes.
//
// Example:
//
//	m := trash.New(store, store, scope, types.StaticHost("root"))
//	m.OnThrowing(func(ctx context.Context, n *types.Node) trash.ThrowDecision {
//	    if n.TypeName == "Locked" {
//	        return trash.Veto()
//	    }
//	    return trash.Proceed()
//	})
//	if err := m.Throw(ctx, node); err != nil {
//	    return err
//	}
package trash
