package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

const timeFormat = "2006-01-02 15:04:05"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printNodes writes one row per node.
func printNodes(w io.Writer, nodes []*types.Node) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPARENT\tDELETED")
	for _, n := range nodes {
		name := n.Name
		deleted := "-"
		if info, ok := n.Thrown(); ok {
			name = info.FormerName
			deleted = humanize.Time(info.DeletedAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.NodeID, name, n.TypeName, n.ParentID, deleted)
	}
	return tw.Flush()
}

// printTree writes node and its loaded subtree, one indented line per node.
func printTree(w io.Writer, node *types.Node) {
	depth := map[string]int{node.NodeID: 0}
	node.Walk(func(n *types.Node) {
		d := depth[n.NodeID]
		for _, c := range n.Children {
			depth[c.NodeID] = d + 1
		}
		fmt.Fprintf(w, "%s%s [%s] %s\n", strings.Repeat("  ", d), n.Name, n.TypeName, n.NodeID)
	})
}

// printNode writes the fields and details of a single node.
func printNode(w io.Writer, n *types.Node) {
	fmt.Fprintf(w, "ID:       %s\n", n.NodeID)
	fmt.Fprintf(w, "Name:     %s\n", n.Name)
	fmt.Fprintf(w, "Title:    %s\n", n.Title)
	fmt.Fprintf(w, "Type:     %s\n", n.TypeName)
	fmt.Fprintf(w, "Parent:   %s\n", n.ParentID)
	fmt.Fprintf(w, "Visible:  %t\n", n.Visible)
	if len(n.AuthorizedRoles) > 0 {
		fmt.Fprintf(w, "Roles:    %s\n", strings.Join(n.AuthorizedRoles, ", "))
	}
	if n.Expires != nil {
		fmt.Fprintf(w, "Expires:  %s\n", n.Expires.Local().Format(timeFormat))
	}
	fmt.Fprintf(w, "Created:  %s\n", n.CreatedAt.Local().Format(timeFormat))
	fmt.Fprintf(w, "Updated:  %s\n", n.UpdatedAt.Local().Format(timeFormat))

	if n.Details.Len() > 0 {
		fmt.Fprintln(w, "\nDetails:")
		for _, k := range n.Details.Keys() {
			v, _ := n.Details.Get(k)
			_, text := types.EncodeValue(v)
			fmt.Fprintf(w, "  %s: %s\n", k, text)
		}
	}
	if len(n.Children) > 0 {
		fmt.Fprintln(w, "\nTree:")
		printTree(w, n)
	}
}
