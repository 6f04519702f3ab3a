package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsync/internal/store"
	"reelsync/internal/syncer"
	"reelsync/internal/trakt"
)

func parseRating(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("rating %q is not a number", raw)
	}
	if value < 1 || value > 10 {
		return 0, fmt.Errorf("rating %d out of range 1-10", value)
	}
	return value, nil
}

func newRateCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <slug> <rating>",
		Short: "Rate a film on Trakt and settle its pending entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			value, err := parseRating(args[1])
			if err != nil {
				return err
			}
			return cmdCtx.withOrchestrator(cmd, func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error {
				err := orch.SubmitRatings(ctx, []trakt.RatingSubmission{{Slug: slug, Value: value}})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %d/10\n", slug, value)
				return nil
			})
		},
	}
}
