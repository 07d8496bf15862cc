package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGrampsCommand(ctx *commandContext) *cobra.Command {
	grampsCmd := &cobra.Command{
		Use:   "gramps",
		Short: "Gramps Web API utilities",
	}

	grampsCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify the Gramps Web API connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.grampsClient()
			if err != nil {
				return err
			}
			if err := client.CheckConnection(cmd.Context()); err != nil {
				return err
			}
			people, err := client.People(cmd.Context())
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s; tree has %d people\n", cfg.Gramps.URL, len(people))
			return nil
		},
	})

	return grampsCmd
}
