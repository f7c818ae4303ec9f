package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func newTrashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect, configure and purge the trash container",
	}
	cmd.AddCommand(newTrashListCmd(a), newTrashPurgeCmd(a), newTrashConfigCmd(a))
	return cmd
}

func newTrashListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items in the trash, oldest deletion first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			items, err := s.manager.List(s.ctx)
			if err != nil {
				return err
			}
			if items == nil {
				items = []*types.Node{}
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "trash is empty")
				return nil
			}
			return printNodes(cmd.OutOrStdout(), items)
		},
	}
}

func newTrashPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge [id]",
		Short: "Permanently delete trash items",
		Long: `Without an argument, delete every trash item whose deletion date is older
than the container's purge interval, bypassing permission checks. With an
ID, delete that one item under normal permission checks.

Example:
  recyclebin trash purge
  recyclebin trash purge 0190a0b2-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if len(args) == 1 {
				n, err := s.node(args[0])
				if err != nil {
					return err
				}
				if err := s.manager.Purge(s.ctx, n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", n.NodeID)
				return nil
			}

			count, err := s.manager.PurgeOldItems(s.ctx)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"purged": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d items\n", count)
			return nil
		},
	}
}

// trashSettings is the JSON form of the container settings.
type trashSettings struct {
	ContainerID   string `json:"container_id,omitempty"`
	Enabled       bool   `json:"enabled"`
	PurgeInterval string `json:"purge_interval"`
	Items         int    `json:"items"`
}

func newTrashConfigCmd(a *app) *cobra.Command {
	var (
		enabled  bool
		interval string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the trash settings",
		Long: `Without flags, show the trash settings. With --enabled or --interval,
update them, creating the container if needed.

Intervals: never, daily, weekly, monthly, quarterly, yearly, a number of
days such as 14, or a duration of whole days such as "30 days".

Example:
  recyclebin trash config
  recyclebin trash config --interval weekly
  recyclebin trash config --enabled=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			changed := cmd.Flags().Changed("enabled") || cmd.Flags().Changed("interval")
			c, err := s.manager.Container(s.ctx, changed)
			if err != nil {
				return err
			}
			if changed {
				en := c.Enabled()
				if cmd.Flags().Changed("enabled") {
					en = enabled
				}
				p := c.PurgeInterval()
				if cmd.Flags().Changed("interval") {
					if p, err = types.ParsePurgeInterval(interval); err != nil {
						return err
					}
				}
				if c, err = s.manager.Configure(s.ctx, en, p); err != nil {
					return err
				}
			}

			out := trashSettings{Enabled: true, PurgeInterval: s.manager.DefaultPurgeInterval().String()}
			if c != nil {
				out = trashSettings{
					ContainerID:   c.NodeID,
					Enabled:       c.Enabled(),
					PurgeInterval: c.PurgeInterval().String(),
					Items:         len(c.Children),
				}
			}
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			if out.ContainerID == "" {
				fmt.Fprintln(w, "Container: (not created yet)")
			} else {
				fmt.Fprintf(w, "Container: %s\n", out.ContainerID)
			}
			fmt.Fprintf(w, "Enabled:   %t\n", out.Enabled)
			fmt.Fprintf(w, "Interval:  %s\n", out.PurgeInterval)
			fmt.Fprintf(w, "Items:     %d\n", out.Items)
			return nil
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "allow items to be thrown")
	cmd.Flags().StringVar(&interval, "interval", "", "purge interval")
	return cmd
}
