package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recyclebin/pkg/sqlite"
)

var errSQLiteOnly = errors.New("export and import need the sqlite backend")

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every node to a JSONL file",
		Long: `Write every node, trash metadata included, to nodes.jsonl in the output
directory (the data directory by default). The file is written atomically.

Example:
  recyclebin export --out ./backup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()
			if s.sqlite == nil {
				return errSQLiteOnly
			}

			if out == "" {
				out = a.cfg.DataDir
			}
			n, err := s.sqlite.ExportJSONL(s.ctx, out)
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d nodes to %s\n", n, filepath.Join(out, sqlite.ExportFile))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output directory (default: the data directory)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load nodes from a JSONL file written by export",
		Long: `Insert or replace the nodes recorded in a JSONL export. Malformed lines
are skipped.

Example:
  recyclebin import ./backup/nodes.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()
			if s.sqlite == nil {
				return errSQLiteOnly
			}

			n, err := s.sqlite.ImportJSONL(s.ctx, args[0])
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d nodes\n", n)
			return nil
		},
	}
}
