package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsync/internal/trakt"
)

func deviceCodePrinter(cmd *cobra.Command) func(url, code string) {
	return func(url, code string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Open %s and enter code %s\n", url, code)
		fmt.Fprintln(out, "Waiting for approval...")
	}
}

func newAuthCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize with Trakt via the device flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			tokens, err := trakt.NewTokenManager(cfg, cmdCtx.logger(),
				trakt.WithNotify(deviceCodePrinter(cmd)))
			if err != nil {
				return err
			}
			// Always rerun the flow so a stale credential can be replaced.
			if _, err := tokens.Acquire(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Authorization complete")
			return nil
		},
	}
}
