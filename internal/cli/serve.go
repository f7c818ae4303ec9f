package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/recyclebin/internal/metrics"
	"github.com/mesh-intelligence/recyclebin/pkg/trash"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		schedule string
		purgeNow bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduled purge sweeper",
		Long: `Run until interrupted, purging expired trash items on the cron schedule in
trash.purge_schedule. When metrics.enabled is set, Prometheus metrics are
served on metrics.addr at /metrics.

Example:
  recyclebin serve
  recyclebin serve --schedule "0 */6 * * *" --purge-now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			if cmd.Flags().Changed("schedule") {
				a.cfg.Trash.PurgeSchedule = schedule
			}
			if purgeNow {
				count, err := s.manager.PurgeOldItems(s.ctx)
				if err != nil {
					return err
				}
				a.logger.Info("startup purge completed", "deleted_count", count)
			}

			sched := trash.NewScheduler(s.manager, a.cfg.Trash.PurgeSchedule)
			if err := sched.Start(s.ctx); err != nil {
				return err
			}
			defer sched.Stop()
			if next := sched.NextRun(); next != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "next purge at %s\n", next.Format(time.RFC3339))
			}

			if !a.cfg.Metrics.Enabled {
				<-ctx.Done()
				a.logger.Info("shutting down")
				return nil
			}

			ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
			if err != nil {
				return sysError(fmt.Errorf("listen on %s: %w", a.cfg.Metrics.Addr, err))
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(s.registry))
			srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			fmt.Fprintf(cmd.OutOrStdout(), "metrics on http://%s/metrics\n", ln.Addr())

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("metrics server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			if err := g.Wait(); err != nil {
				return sysError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression overriding trash.purge_schedule")
	cmd.Flags().BoolVar(&purgeNow, "purge-now", false, "run one purge before waiting for the schedule")
	return cmd
}
