package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/extraction"
	"lineage/internal/facts"
	"lineage/internal/normalize"
	"lineage/internal/store"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <obituary-id>",
		Short: "Extract facts from an obituary with the configured LLM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				obituary, err := st.GetObituary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if obituary == nil {
					return fmt.Errorf("obituary %s not found", args[0])
				}

				extractor, err := extraction.New(cfg.Extraction, ctx.logger())
				if err != nil {
					return err
				}
				extracted, err := extractor.Extract(cmd.Context(), obituary.SubjectName, obituary.Text)
				if err != nil {
					return err
				}

				stored, err := storeNormalized(cmd, cfg, st, obituary, extracted)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d facts from obituary %s\n", len(stored), obituary.ID)
				return nil
			})
		},
	}
}

// storeNormalized runs the normalization passes and replaces the
// obituary's fact set.
func storeNormalized(cmd *cobra.Command, cfg *config.Config, st *store.Store, obituary *store.Obituary, input []facts.Fact) ([]facts.Fact, error) {
	normalizer := normalize.New(cfg.Normalize, nil)
	normalized := normalizer.Run(obituary.SubjectName, obituary.Text, input)
	return st.ReplaceFacts(cmd.Context(), obituary.ID, normalized)
}
