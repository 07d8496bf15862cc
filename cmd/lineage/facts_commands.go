package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/extraction"
	"lineage/internal/facts"
	"lineage/internal/store"
)

func newFactsCommand(ctx *commandContext) *cobra.Command {
	factsCmd := &cobra.Command{
		Use:   "facts",
		Short: "Inspect and import extracted facts",
	}

	factsCmd.AddCommand(newFactsImportCommand(ctx))
	factsCmd.AddCommand(newFactsListCommand(ctx))

	return factsCmd
}

func newFactsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <obituary-id> <file>",
		Short: "Import facts from a JSON file instead of running the LLM",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				obituary, err := st.GetObituary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if obituary == nil {
					return fmt.Errorf("obituary %s not found", args[0])
				}

				imported, err := extraction.ReadFactsFile(args[1], obituary.SubjectName)
				if err != nil {
					return err
				}
				stored, err := storeNormalized(cmd, cfg, st, obituary, imported)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d facts into obituary %s\n", len(stored), obituary.ID)
				return nil
			})
		},
	}
}

func newFactsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <obituary-id>",
		Short: "List the obituary's fact set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				factSet, err := st.FactsForObituary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(factSet) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No facts; run extract or facts import first")
					return nil
				}

				rows := make([][]string, 0, len(factSet))
				for _, f := range factSet {
					rows = append(rows, []string{
						fmt.Sprintf("%d", f.ID),
						string(f.Type),
						displayPerson(f.PersonName),
						factDetail(f),
						fmt.Sprintf("%.2f", f.Confidence),
						factOrigin(f),
						string(f.Resolution),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Type", "Person", "Detail", "Conf", "Origin", "Status"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

// displayPerson renders the empty name as the subject marker.
func displayPerson(name string) string {
	if name == "" {
		return "(subject)"
	}
	return name
}

// factOrigin tells stated facts apart from derived ones, with the
// derivation basis when one was recorded.
func factOrigin(f facts.Fact) string {
	if !f.Inferred {
		return "stated"
	}
	if f.InferenceBasis == "" {
		return "inferred"
	}
	return "inferred: " + f.InferenceBasis
}

func factDetail(f facts.Fact) string {
	if f.Type == facts.TypeRelationship {
		return fmt.Sprintf("%s of %s", f.Relationship, displayPerson(f.RelatedName))
	}
	return f.Value
}
