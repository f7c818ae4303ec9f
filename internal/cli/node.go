package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func newNodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create and inspect content nodes",
	}
	cmd.AddCommand(newNodeAddCmd(a), newNodeShowCmd(a), newNodeListCmd(a))
	return cmd
}

func newNodeAddCmd(a *app) *cobra.Command {
	var (
		parent, typeName, name, title, expires string
		sortOrder                              int
		hidden                                 bool
		roles, details                         []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a node",
		Long: `Create a node under a parent (the root by default) and print its ID.

Details are key=value pairs. Values parse as integers, booleans or RFC 3339
times when they can and are stored as strings otherwise.

Example:
  recyclebin node add --name Reports
  recyclebin node add --parent <id> --name "Q3" --detail Author=ann --detail Revision=3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required: %w", types.ErrInvalidName)
			}
			n := &types.Node{
				ParentID:        parent,
				TypeName:        typeName,
				Name:            name,
				Title:           title,
				SortOrder:       sortOrder,
				Visible:         !hidden,
				AuthorizedRoles: roles,
			}
			if n.ParentID == "" {
				n.ParentID = a.cfg.RootID
			}
			if n.Title == "" {
				n.Title = name
			}
			if expires != "" {
				t, err := time.Parse(time.RFC3339, expires)
				if err != nil {
					return fmt.Errorf("--expires: %w", types.ErrInvalidData)
				}
				n.Expires = &t
			}
			for _, d := range details {
				key, value, err := parseDetail(d)
				if err != nil {
					return err
				}
				if err := n.Details.Set(key, value); err != nil {
					return err
				}
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.store.Save(s.ctx, n); err != nil {
				return fmt.Errorf("add node: %w", err)
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.NodeID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&parent, "parent", "", "parent node ID (default: the root)")
	f.StringVar(&typeName, "type", "Page", "content type name")
	f.StringVar(&name, "name", "", "node name (required)")
	f.StringVar(&title, "title", "", "node title (default: the name)")
	f.IntVar(&sortOrder, "sort", 0, "sort order among siblings")
	f.BoolVar(&hidden, "hidden", false, "create the node invisible")
	f.StringVar(&expires, "expires", "", "expiration time (RFC 3339)")
	f.StringSliceVar(&roles, "authorized-roles", nil, "roles allowed to modify the node")
	f.StringArrayVar(&details, "detail", nil, "detail as key=value (repeatable)")
	return cmd
}

// parseDetail splits key=value and infers the value type.
func parseDetail(s string) (string, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", nil, fmt.Errorf("detail %q is not key=value: %w", s, types.ErrInvalidData)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return key, i, nil
	}
	if raw == "true" || raw == "false" {
		return key, raw == "true", nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return key, t, nil
	}
	return key, raw, nil
}

func newNodeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a node with its details and subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.node(args[0])
			if err != nil {
				return err
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			printNode(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newNodeListCmd(a *app) *cobra.Command {
	var (
		parent, typeName, orderBy string
		limit                     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes",
		Long: `List the children of a parent (the root by default).

Example:
  recyclebin node list
  recyclebin node list --parent <id> --type Page --limit 10 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if parent == "" {
				parent = a.cfg.RootID
			}
			nodes, err := s.store.Find(s.ctx, types.Query{
				ParentID: parent,
				TypeName: typeName,
				Limit:    limit,
				OrderBy:  orderBy,
			})
			if err != nil {
				return fmt.Errorf("list nodes: %w", err)
			}
			for _, n := range nodes {
				n.Children = nil
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), nodes)
			}
			return printNodes(cmd.OutOrStdout(), nodes)
		},
	}
	f := cmd.Flags()
	f.StringVar(&parent, "parent", "", "parent node ID (default: the root)")
	f.StringVar(&typeName, "type", "", "filter by content type")
	f.StringVar(&orderBy, "order", types.OrderBySortOrder, "order by sort_order, name or deleted_date")
	f.IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	return cmd
}
