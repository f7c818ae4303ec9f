package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThrowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "throw <id>",
		Short: "Move a node and its subtree into the trash",
		Long: `Move a node and its subtree into the trash container, creating the
container on first use. Thrown nodes are renamed to their IDs and expired;
restore puts them back.

Example:
  recyclebin throw 0190a0b2-...`,
		Args: cobra.ExactArgs(1),
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
			if err := s.manager.Throw(s.ctx, n); err != nil {
				return err
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "thrown %s (%d descendants)\n", n.NodeID, len(n.Descendants()))
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Put a thrown node back where it came from",
		Long: `Restore a thrown node and its subtree under the former parent with the
former name and expiration. Fails when the former parent no longer exists.

Example:
  recyclebin restore 0190a0b2-...`,
		Args: cobra.ExactArgs(1),
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
			if err := s.manager.Restore(s.ctx, n); err != nil {
				return err
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s as %q under %s\n", n.NodeID, n.Name, n.ParentID)
			return nil
		},
	}
}
