package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelsync/internal/daemon"
	"reelsync/internal/store"
	"reelsync/internal/syncer"
)

func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			return cmdCtx.withOrchestrator(cmd, func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error {
				srv, err := daemon.NewServer(cfg, orch, cmdCtx.logger())
				if err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := srv.Start(ctx); err != nil {
					return err
				}
				defer srv.Stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on %s\n", srv.Addr())
				<-ctx.Done()
				return nil
			})
		},
	}
}
