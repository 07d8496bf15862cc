package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect resolutions awaiting a decision",
	}

	reviewCmd.AddCommand(newReviewPersonsCommand(ctx))
	reviewCmd.AddCommand(newReviewFactsCommand(ctx))

	return reviewCmd
}

func newReviewPersonsCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "persons <obituary-id>",
		Short: "Show person resolutions and their match candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				var statuses []store.ResolutionStatus
				if !all {
					statuses = []store.ResolutionStatus{store.ResolutionPending}
				}
				resolutions, err := st.PersonResolutionsForObituary(cmd.Context(), args[0], statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resolutions) == 0 {
					if all {
						fmt.Fprintln(out, "No person resolutions; run resolve first")
					} else {
						fmt.Fprintln(out, "No persons awaiting review")
					}
					return nil
				}

				rows := make([][]string, 0, len(resolutions))
				for _, res := range resolutions {
					rows = append(rows, []string{
						res.PersonName,
						string(res.Role),
						string(res.Status),
						res.GrampsHandle,
						fmt.Sprintf("%.2f", res.MatchScore),
						string(res.MatchMethod),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Person", "Role", "Status", "Handle", "Score", "Method"},
					rows,
					nil))

				for _, res := range resolutions {
					if res.Status != store.ResolutionPending || len(res.Candidates) == 0 {
						continue
					}
					fmt.Fprintf(out, "\nCandidates for %s:\n", res.PersonName)
					for _, candidate := range res.Candidates {
						maiden := ""
						if candidate.MatchedMaidenName {
							maiden = " (maiden name)"
						}
						fmt.Fprintf(out, "  %-10s %.2f  %s%s\n",
							candidate.Handle, candidate.Score, candidate.Name, maiden)
					}
				}
				if !all {
					fmt.Fprintln(out, "\nDecide with `lineage select` or `lineage create-new`.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include decided resolutions")
	return cmd
}

func newReviewFactsCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "facts <obituary-id>",
		Short: "Show fact resolutions awaiting approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				var statuses []store.FactStatus
				if !all {
					statuses = []store.FactStatus{store.FactPending}
				}
				resolutions, err := st.FactResolutionsForObituary(cmd.Context(), args[0], statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resolutions) == 0 {
					if all {
						fmt.Fprintln(out, "No fact resolutions; run resolve first")
					} else {
						fmt.Fprintln(out, "No facts awaiting review")
					}
					return nil
				}

				rows := make([][]string, 0, len(resolutions))
				for _, res := range resolutions {
					detail := ""
					if fact, err := st.GetFact(cmd.Context(), res.FactID); err == nil && fact != nil {
						detail = fmt.Sprintf("%s %s: %s", displayPerson(fact.PersonName), fact.Type, factDetail(*fact))
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", res.ID),
						detail,
						string(res.Status),
						string(res.Action),
						yesNo(res.IsConflict),
						res.ExternalValue,
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Fact", "Status", "Action", "Conflict", "External"},
					rows,
					[]columnAlignment{alignRight}))
				if !all {
					fmt.Fprintln(out, "\nDecide with `lineage approve`, `lineage reject`, or `lineage approve-all`.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include decided resolutions")
	return cmd
}
