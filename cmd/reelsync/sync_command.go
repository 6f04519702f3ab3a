package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reelsync/internal/store"
	"reelsync/internal/syncer"
)

func newSyncCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "sync [recent|full|ratings]",
		Short:     "Pull watch history and ratings from Trakt",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"recent", "full", "ratings"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := syncer.ModeRecent
			if len(args) == 1 {
				mode = syncer.Mode(args[0])
			}
			return cmdCtx.withOrchestrator(cmd, func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error {
				report, err := orch.Sync(ctx, mode)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if mode != syncer.ModeRatings {
					fmt.Fprintf(out, "History: %d fetched, %d new\n", report.History.Fetched, report.History.Inserted)
				}
				fmt.Fprintf(out, "Ratings: %d applied, %d awaiting a rating\n", report.Ratings.Applied, report.Ratings.Unrated)
				return nil
			})
		},
	}
	return cmd
}
