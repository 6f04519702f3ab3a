package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reelsync/internal/store"
	"reelsync/internal/syncer"
)

func newPushCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "push [history|ratings|both]",
		Short:     "Mirror stored history and ratings into Plex",
		Long:      "Opens the Plex web app in a browser and replays pending records through its interface. Sign in when prompted; the session persists across runs.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"history", "ratings", "both"},
		RunE: func(cmd *cobra.Command, args []string) error {
			field := store.MirrorHistory
			if len(args) == 1 {
				field = store.MirrorField(args[0])
			}
			return cmdCtx.withOrchestrator(cmd, func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error {
				report, err := orch.Push(ctx, field)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Mirrored %d of %d (%d without a match, %d failed)\n",
					report.Mirrored, report.Attempted, report.NoMatch, report.Failed)
				return nil
			})
		},
	}
	return cmd
}
