package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/store"
)

func newObituaryCommand(ctx *commandContext) *cobra.Command {
	obituaryCmd := &cobra.Command{
		Use:   "obituary",
		Short: "Manage stored obituaries",
	}

	obituaryCmd.AddCommand(newObituaryAddCommand(ctx))
	obituaryCmd.AddCommand(newObituaryListCommand(ctx))
	obituaryCmd.AddCommand(newObituaryShowCommand(ctx))

	return obituaryCmd
}

func newObituaryAddCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var source string

	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Store an obituary from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readObituaryText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("obituary text is empty")
			}
			if strings.TrimSpace(subject) == "" {
				return fmt.Errorf("--subject is required")
			}

			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				obituary, err := st.NewObituary(cmd.Context(), source, subject, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored obituary %s for %s\n", obituary.ID, obituary.SubjectName)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Full name of the deceased")
	cmd.Flags().StringVar(&source, "source", "manual", "Where the obituary came from")
	return cmd
}

func readObituaryText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read obituary file: %w", err)
	}
	return string(raw), nil
}

func newObituaryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored obituaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				obituaries, err := st.ListObituaries(cmd.Context())
				if err != nil {
					return err
				}
				if len(obituaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No obituaries stored")
					return nil
				}

				rows := make([][]string, 0, len(obituaries))
				for _, o := range obituaries {
					rows = append(rows, []string{
						o.ID,
						o.SubjectName,
						o.Source,
						o.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Subject", "Source", "Added"},
					rows,
					nil))
				return nil
			})
		},
	}
}

func newObituaryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <obituary-id>",
		Short: "Show one obituary's text and metadata",
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

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:      %s\n", obituary.ID)
				fmt.Fprintf(out, "Subject: %s\n", obituary.SubjectName)
				fmt.Fprintf(out, "Source:  %s\n", obituary.Source)
				fmt.Fprintf(out, "Added:   %s\n\n", obituary.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintln(out, obituary.Text)
				return nil
			})
		},
	}
}
