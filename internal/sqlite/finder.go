package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// Find translates q into SQL and returns the matching nodes, each loaded with
// its subtree.
func (b *Backend) Find(ctx context.Context, q types.Query) ([]*types.Node, error) {
	query, args, err := buildFindQuery(q)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding nodes: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning node id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	results := make([]*types.Node, 0, len(ids))
	for _, id := range ids {
		n, err := b.load(ctx, b.db, id)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, nil
}

// buildFindQuery returns the SELECT statement and arguments for q. Every
// detail condition joins node_details once; times compare as fixed-width text.
func buildFindQuery(q types.Query) (string, []any, error) {
	var (
		joins      []string
		conditions []string
		args       []any
		joinArgs   []any
	)

	if q.ParentID != "" {
		conditions = append(conditions, "n.parent_id = ?")
		args = append(args, q.ParentID)
	}
	if q.TypeName != "" {
		conditions = append(conditions, "n.type_name = ?")
		args = append(args, q.TypeName)
	}

	for i, c := range q.Details {
		var op string
		switch c.Op {
		case types.OpEqual:
			op = "="
		case types.OpLessOrEqual:
			op = "<="
		default:
			return "", nil, fmt.Errorf("operator %q: %w", c.Op, types.ErrInvalidQuery)
		}
		var d types.Details
		if err := d.Set(c.Key, c.Value); err != nil {
			return "", nil, fmt.Errorf("condition on %s: %w", c.Key, types.ErrInvalidQuery)
		}
		v, _ := d.Get(c.Key)
		valueType, text := types.EncodeValue(v)
		if valueType == types.ValueTypeNull {
			return "", nil, fmt.Errorf("condition on %s compares null: %w", c.Key, types.ErrInvalidQuery)
		}

		alias := fmt.Sprintf("d%d", i)
		joins = append(joins, fmt.Sprintf(
			"INNER JOIN node_details AS %[1]s ON %[1]s.node_id = n.node_id AND %[1]s.detail_key = ?", alias))
		joinArgs = append(joinArgs, c.Key)

		column := alias + ".value"
		var arg any = text
		switch valueType {
		case types.ValueTypeInt:
			column = "CAST(" + column + " AS INTEGER)"
			arg = v
		case types.ValueTypeFloat:
			column = "CAST(" + column + " AS REAL)"
			arg = v
		}
		conditions = append(conditions, fmt.Sprintf("%s.value_type = ? AND %s %s ?", alias, column, op))
		args = append(args, valueType, arg)
	}

	var orderBy string
	switch q.OrderBy {
	case "", types.OrderBySortOrder:
		orderBy = "n.sort_order, n.name, n.node_id"
	case types.OrderByName:
		orderBy = "n.name, n.node_id"
	case types.OrderByDeletedDate:
		joins = append(joins,
			"LEFT JOIN node_details AS dd ON dd.node_id = n.node_id AND dd.detail_key = ?")
		joinArgs = append(joinArgs, types.DetailDeletedDate)
		orderBy = "dd.value, n.node_id"
	default:
		return "", nil, fmt.Errorf("order by %q: %w", q.OrderBy, types.ErrInvalidQuery)
	}

	var sb strings.Builder
	sb.WriteString("SELECT n.node_id FROM nodes AS n")
	for _, j := range joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy)
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	return sb.String(), append(joinArgs, args...), nil
}
