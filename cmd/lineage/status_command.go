package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <obituary-id>",
		Short: "Summarize an obituary's progress through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				obituary, err := st.GetObituary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if obituary == nil {
					return fmt.Errorf("obituary %s not found", args[0])
				}

				factSet, err := st.FactsForObituary(cmd.Context(), obituary.ID)
				if err != nil {
					return err
				}
				persons, err := st.PersonResolutionsForObituary(cmd.Context(), obituary.ID)
				if err != nil {
					return err
				}
				factResolutions, err := st.FactResolutionsForObituary(cmd.Context(), obituary.ID)
				if err != nil {
					return err
				}

				personCounts := map[store.ResolutionStatus]int{}
				for _, res := range persons {
					personCounts[res.Status]++
				}
				factCounts := map[store.FactStatus]int{}
				for _, res := range factResolutions {
					factCounts[res.Status]++
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Obituary %s (%s)\n", obituary.ID, obituary.SubjectName)
				fmt.Fprintf(out, "Facts extracted: %d\n", len(factSet))

				if len(persons) == 0 {
					fmt.Fprintln(out, "Persons: not resolved yet")
				} else {
					fmt.Fprintf(out, "Persons:")
					for _, status := range store.AllResolutionStatuses() {
						if count := personCounts[status]; count > 0 {
							fmt.Fprintf(out, " %d %s", count, status)
						}
					}
					fmt.Fprintln(out)
				}
				if len(factResolutions) > 0 {
					fmt.Fprintf(out, "Fact decisions:")
					for _, status := range store.AllFactStatuses() {
						if count := factCounts[status]; count > 0 {
							fmt.Fprintf(out, " %d %s", count, status)
						}
					}
					fmt.Fprintln(out)
				}

				batch, err := st.LatestBatchForObituary(cmd.Context(), obituary.ID)
				if err != nil {
					return err
				}
				if batch == nil {
					fmt.Fprintln(out, "Commit: never run")
					return nil
				}
				fmt.Fprintf(out, "Commit: batch %s %s", batch.ID, batch.Status)
				if batch.ErrorMessage != "" {
					fmt.Fprintf(out, " (%s)", batch.ErrorMessage)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}
