package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelsync/internal/store"
	"reelsync/internal/syncer"
)

func newFilmsCommand(cmdCtx *commandContext) *cobra.Command {
	var page int
	var limit int

	cmd := &cobra.Command{
		Use:   "films",
		Short: "List stored watch history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withOrchestrator(cmd, func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error {
				result, err := orch.Films(ctx, page, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(result.Films) == 0 {
					fmt.Fprintln(out, "No films stored; run `reelsync sync` first")
					return nil
				}

				rows := make([][]string, 0, len(result.Films))
				for _, film := range result.Films {
					rating := "-"
					if film.Rated {
						rating = strconv.Itoa(film.Rating)
					}
					rows = append(rows, []string{
						film.Title,
						strconv.Itoa(film.Year),
						film.WatchedAt.Local().Format(time.DateOnly),
						rating,
						yesNo(film.PlexHistory),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Year", "Watched", "Rating", "In Plex"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "%d of %d films\n", len(result.Films), result.Total)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 25, "Films per page")
	return cmd
}
