package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize recyclebin storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"when none exists, and create the root node.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			fmt.Fprintf(cmd.OutOrStdout(), "recyclebin initialized (backend %s, data %s, root %s)\n",
				a.cfg.Backend, a.cfg.DataDir, a.cfg.RootID)
			return nil
		},
	}
}
