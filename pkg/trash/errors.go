package trash

import (
	"fmt"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// PermissionDeniedError reports that the store refused to move a node into
// or out of the trash. It unwraps to the store's error, so
// errors.Is(err, types.ErrPermissionDenied) holds.
type PermissionDeniedError struct {
	Op       string // "throw", "restore" or "purge"
	NodeID   string
	TypeName string
	Err      error
}

func (e *PermissionDeniedError) Error() string {
	msg := fmt.Sprintf("cannot %s node %s (%s): %v", e.Op, e.NodeID, e.TypeName, e.Err)
	if e.Op == "throw" {
		msg += "; disable the security scope around this operation or register type " +
			e.TypeName + " as not throwable"
	}
	return msg
}

func (e *PermissionDeniedError) Unwrap() error {
	return e.Err
}

func wrapPermission(op string, node *types.Node, err error) error {
	return &PermissionDeniedError{Op: op, NodeID: node.NodeID, TypeName: node.TypeName, Err: err}
}
