// Package cli implements the recyclebin command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recyclebin/internal/logging"
	"github.com/mesh-intelligence/recyclebin/internal/paths"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as an environment failure (storage, filesystem).
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// app holds global flag values and the configuration loaded for a command.
type app struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	user      string
	roles     []string

	cfg    types.Config
	logger *slog.Logger
}

// NewRootCmd creates the top-level "recyclebin" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "recyclebin",
		Short: "Soft delete for a hierarchical content store",
		Long: "recyclebin throws content nodes into a trash container, restores them\n" +
			"to their original place, and purges items past their retention window.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir or $"+paths.EnvConfigDir+")")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.StringVar(&a.backend, "backend", "", "storage backend (sqlite, memory); overrides config.yaml")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")
	pf.StringVar(&a.user, "user", "cli", "principal name used for permission checks")
	pf.StringSliceVar(&a.roles, "roles", []string{types.RoleAdministrators}, "roles of the principal")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newNodeCmd(a),
		newThrowCmd(a),
		newRestoreCmd(a),
		newTrashCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads config.yaml, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if cfg.DataDir, err = paths.ResolveDataDir(a.dataDir, cfg.DataDir); err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log, logging.WithWriter(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command line args and returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}
