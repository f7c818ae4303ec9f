package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/recyclebin/internal/security"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get retrieves a node and hydrates its subtree and details.
func (b *Backend) Get(ctx context.Context, id string) (*types.Node, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.load(ctx, b.db, id)
}

// load reads the node with the given ID and every descendant.
func (b *Backend) load(ctx context.Context, q queryer, id string) (*types.Node, error) {
	rows, err := q.QueryContext(ctx,
		subtreeCTE+` SELECT `+nodeColumns+` FROM nodes WHERE node_id IN (SELECT node_id FROM subtree)`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting node %s: %w", id, err)
	}
	byID := make(map[string]*types.Node)
	var order []*types.Node
	for rows.Next() {
		n, err := hydrateNode(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating node: %w", err)
		}
		byID[n.NodeID] = n
		order = append(order, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	top, ok := byID[id]
	if !ok {
		return nil, types.ErrNotFound
	}

	if err := b.hydrateDetails(ctx, q, id, byID); err != nil {
		return nil, fmt.Errorf("hydrating details for node %s: %w", id, err)
	}

	for _, n := range order {
		if n == top {
			continue
		}
		if p, ok := byID[n.ParentID]; ok {
			p.Children = append(p.Children, n)
		}
	}
	top.SortChildren()
	top.AdoptChildren()
	return top, nil
}

// hydrateDetails loads node_details rows for the subtree rooted at id.
func (b *Backend) hydrateDetails(ctx context.Context, q queryer, id string, byID map[string]*types.Node) error {
	rows, err := q.QueryContext(ctx,
		subtreeCTE+` SELECT node_id, detail_key, value_type, value FROM node_details
            WHERE node_id IN (SELECT node_id FROM subtree) ORDER BY node_id, ordinal`,
		id,
	)
	if err != nil {
		return fmt.Errorf("querying node_details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nodeID, key, valueType, raw string
		if err := rows.Scan(&nodeID, &key, &valueType, &raw); err != nil {
			return fmt.Errorf("scanning node_detail: %w", err)
		}
		n, ok := byID[nodeID]
		if !ok {
			continue
		}
		v, err := types.DecodeValue(valueType, raw)
		if err != nil {
			return fmt.Errorf("parsing detail %s for %s: %w", key, nodeID, err)
		}
		if err := n.Details.Set(key, v); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Save upserts the node, its details, and every loaded descendant in one
// transaction. New nodes receive a UUID v7.
func (b *Backend) Save(ctx context.Context, node *types.Node) error {
	if node == nil {
		return types.ErrInvalidData
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrBackendDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := b.authorize(ctx, tx, node); err != nil {
		return err
	}
	if node.ParentID != "" {
		if ok, err := exists(ctx, tx, node.ParentID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("saving node %s: parent %s: %w", node.NodeID, node.ParentID, types.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	var walkErr error
	node.Walk(func(n *types.Node) {
		if walkErr == nil {
			walkErr = saveOne(ctx, tx, n, now)
		}
	})
	if walkErr != nil {
		return walkErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing node: %w", err)
	}
	return nil
}

// saveOne upserts a single node row and replaces its details. Children of n
// get their ParentID pointed at n.
func saveOne(ctx context.Context, tx *sql.Tx, n *types.Node, now time.Time) error {
	if n.NodeID == "" {
		n.NodeID = generateUUID()
	}
	if n.Name == "" {
		n.Name = n.NodeID
	}
	for _, c := range n.Children {
		c.ParentID = n.NodeID
	}

	var createdAt string
	err := tx.QueryRowContext(ctx, "SELECT created_at FROM nodes WHERE node_id = ?", n.NodeID).Scan(&createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
	case err != nil:
		return fmt.Errorf("checking node existence: %w", err)
	default:
		if n.CreatedAt, err = types.ParseTime(createdAt); err != nil {
			return err
		}
	}
	n.UpdatedAt = now

	roles, err := json.Marshal(nonNil(n.AuthorizedRoles))
	if err != nil {
		return fmt.Errorf("marshaling roles: %w", err)
	}
	var expires, parentID any
	if n.Expires != nil {
		expires = types.FormatTime(*n.Expires)
	}
	if n.ParentID != "" {
		parentID = n.ParentID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO nodes (node_id, parent_id, type_name, name, title, sort_order, visible,
            authorized_roles, expires, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(node_id) DO UPDATE SET
            parent_id = excluded.parent_id,
            type_name = excluded.type_name,
            name = excluded.name,
            title = excluded.title,
            sort_order = excluded.sort_order,
            visible = excluded.visible,
            authorized_roles = excluded.authorized_roles,
            expires = excluded.expires,
            updated_at = excluded.updated_at`,
		n.NodeID, parentID, n.TypeName, n.Name, n.Title, n.SortOrder, boolToInt(n.Visible),
		string(roles), expires, types.FormatTime(n.CreatedAt), types.FormatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("persisting node %s: %w", n.NodeID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM node_details WHERE node_id = ?", n.NodeID); err != nil {
		return fmt.Errorf("clearing details of %s: %w", n.NodeID, err)
	}
	for i, key := range n.Details.Keys() {
		v, _ := n.Details.Get(key)
		valueType, text := types.EncodeValue(v)
		_, err := tx.ExecContext(ctx,
			"INSERT INTO node_details (node_id, detail_key, ordinal, value_type, value) VALUES (?, ?, ?, ?, ?)",
			n.NodeID, key, i, valueType, text,
		)
		if err != nil {
			return fmt.Errorf("persisting detail %s of %s: %w", key, n.NodeID, err)
		}
	}
	return nil
}

// Move reparents node under newParent.
func (b *Backend) Move(ctx context.Context, node, newParent *types.Node) error {
	if node == nil || newParent == nil {
		return types.ErrInvalidData
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrBackendDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, n := range []*types.Node{node, newParent} {
		ok, err := exists(ctx, tx, n.NodeID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("moving node %s: %s: %w", node.NodeID, n.NodeID, types.ErrNotFound)
		}
		if err := b.authorize(ctx, tx, n); err != nil {
			return err
		}
	}

	var cycle bool
	err = tx.QueryRowContext(ctx,
		subtreeCTE+` SELECT EXISTS (SELECT 1 FROM subtree WHERE node_id = ?)`,
		node.NodeID, newParent.NodeID,
	).Scan(&cycle)
	if err != nil {
		return fmt.Errorf("checking move target: %w", err)
	}
	if cycle {
		return fmt.Errorf("moving node %s under its own descendant: %w", node.NodeID, types.ErrInvalidData)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE nodes SET parent_id = ?, updated_at = ? WHERE node_id = ?",
		newParent.NodeID, types.FormatTime(now), node.NodeID,
	); err != nil {
		return fmt.Errorf("moving node %s: %w", node.NodeID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing move: %w", err)
	}

	node.AddTo(newParent)
	node.UpdatedAt = now
	return nil
}

// Delete removes the node, its subtree, and their details.
func (b *Backend) Delete(ctx context.Context, node *types.Node) error {
	if node == nil || node.NodeID == "" {
		return types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrBackendDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ok, err := exists(ctx, tx, node.NodeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("deleting node %s: %w", node.NodeID, types.ErrNotFound)
	}
	if err := b.authorize(ctx, tx, node); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		subtreeCTE+` DELETE FROM node_details WHERE node_id IN (SELECT node_id FROM subtree)`,
		node.NodeID,
	); err != nil {
		return fmt.Errorf("deleting node details: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		subtreeCTE+` DELETE FROM nodes WHERE node_id IN (SELECT node_id FROM subtree)`,
		node.NodeID,
	); err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing node deletion: %w", err)
	}
	return nil
}

// authorize checks the write against both the stored roles of the node and
// the roles carried by the in-memory node.
func (b *Backend) authorize(ctx context.Context, q queryer, node *types.Node) error {
	if node.NodeID != "" {
		var raw string
		err := q.QueryRowContext(ctx, "SELECT authorized_roles FROM nodes WHERE node_id = ?", node.NodeID).Scan(&raw)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("reading roles of %s: %w", node.NodeID, err)
		default:
			stored := &types.Node{NodeID: node.NodeID}
			if err := json.Unmarshal([]byte(raw), &stored.AuthorizedRoles); err != nil {
				return fmt.Errorf("parsing roles of %s: %w", node.NodeID, err)
			}
			if err := security.Authorize(ctx, b.scope, stored); err != nil {
				return err
			}
		}
	}
	return security.Authorize(ctx, b.scope, node)
}

func exists(ctx context.Context, q queryer, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM nodes WHERE node_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking node existence: %w", err)
	}
	return true, nil
}

// hydrateNode converts a row selected with nodeColumns into a *types.Node.
func hydrateNode(rows *sql.Rows) (*types.Node, error) {
	var (
		n                    types.Node
		parentID, expires    sql.NullString
		visible              int
		roles                string
		createdAt, updatedAt string
	)
	if err := rows.Scan(&n.NodeID, &parentID, &n.TypeName, &n.Name, &n.Title, &n.SortOrder,
		&visible, &roles, &expires, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.ParentID = parentID.String
	n.Visible = visible != 0
	if err := json.Unmarshal([]byte(roles), &n.AuthorizedRoles); err != nil {
		return nil, fmt.Errorf("parsing authorized_roles: %w", err)
	}
	if len(n.AuthorizedRoles) == 0 {
		n.AuthorizedRoles = nil
	}
	var err error
	if expires.Valid {
		t, err := types.ParseTime(expires.String)
		if err != nil {
			return nil, fmt.Errorf("parsing expires: %w", err)
		}
		n.Expires = &t
	}
	if n.CreatedAt, err = types.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if n.UpdatedAt, err = types.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
