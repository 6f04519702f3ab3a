package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reelsync/internal/store"
	"reelsync/internal/syncer"
)

func newPendingCommand(cmdCtx *commandContext) *cobra.Command {
	var page int
	var limit int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List films awaiting a rating decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withOrchestrator(cmd, func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error {
				result, err := orch.Pending(ctx, page, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(result.Pending) == 0 {
					fmt.Fprintln(out, "Nothing awaiting a rating")
					return nil
				}

				rows := make([][]string, 0, len(result.Pending))
				for _, entry := range result.Pending {
					rows = append(rows, []string{entry.Slug, entry.Title})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Slug", "Title"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%d of %d pending\n", len(result.Pending), result.Total)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 25, "Entries per page")
	return cmd
}
