package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineage/internal/commit"
	"lineage/internal/config"
	"lineage/internal/store"
)

func newCommitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <obituary-id>",
		Short: "Push approved results into the Gramps tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				client, err := ctx.grampsClient()
				if err != nil {
					return err
				}
				orchestrator := commit.New(st, client, cfg, ctx.logger())

				batch, err := orchestrator.Commit(cmd.Context(), args[0])
				if err != nil {
					if batch != nil {
						return fmt.Errorf("commit batch %s failed: %w", batch.ID, err)
					}
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Commit batch %s completed\n", batch.ID)
				fmt.Fprintf(out, "  persons created:  %d\n", batch.PersonsCreated)
				fmt.Fprintf(out, "  facts committed:  %d\n", batch.FactsCommitted)
				fmt.Fprintf(out, "  families created: %d\n", batch.FamiliesCreated)
				return nil
			})
		},
	}
}
