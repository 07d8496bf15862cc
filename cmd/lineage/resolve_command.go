package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/match"
	"lineage/internal/resolution"
	"lineage/internal/store"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <obituary-id>",
		Short: "Match persons and facts against the Gramps tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				client, err := ctx.grampsClient()
				if err != nil {
					return err
				}
				coordinator := resolution.New(st, client, match.New(cfg.Matching), ctx.logger())

				summary, err := coordinator.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Persons: %d matched, %d pending review, %d to create\n",
					summary.PersonsMatched, summary.PersonsPending, summary.PersonsCreateNew)
				fmt.Fprintf(out, "Facts:   %d matched, %d pending review, %d skipped\n",
					summary.FactsMatched, summary.FactsPending, summary.FactsSkipped)
				if summary.PersonsPending > 0 || summary.FactsPending > 0 {
					fmt.Fprintln(out, "Run `lineage review persons` and `lineage review facts` to decide the pending items.")
				}
				return nil
			})
		},
	}
}
