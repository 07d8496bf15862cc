package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lineage/internal/config"
	"lineage/internal/resolution"
	"lineage/internal/store"
)

func newDecisionCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newApproveCommand(ctx),
		newRejectCommand(ctx),
		newApproveAllCommand(ctx),
		newSelectCommand(ctx),
		newCreateNewCommand(ctx),
		newRejectPersonCommand(ctx),
		newOverridePersonCommand(ctx),
		newOverrideValueCommand(ctx),
	}
}

// reviewer builds a coordinator for decision commands. Decisions only
// touch the store, so no Gramps connection is needed.
func reviewer(ctx *commandContext, st *store.Store) *resolution.Coordinator {
	return resolution.New(st, nil, nil, ctx.logger())
}

func parseResolutionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fact resolution id %q", arg)
	}
	return id, nil
}

func newApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <fact-resolution-id>",
		Short: "Approve a pending fact for commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseResolutionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).ApproveFact(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Approved fact resolution %d\n", id)
				return nil
			})
		},
	}
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <fact-resolution-id>",
		Short: "Reject a pending fact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseResolutionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).RejectFact(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected fact resolution %d\n", id)
				return nil
			})
		},
	}
}

func newApproveAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve-all <obituary-id>",
		Short: "Approve every pending add or update fact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				changed, err := reviewer(ctx, st).ApproveAllFacts(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Approved %d facts\n", changed)
				return nil
			})
		},
	}
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <obituary-id> <person-name> <handle>",
		Short: "Match a pending person to one of their candidates",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).SelectCandidate(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Matched %s to %s\n", args[1], args[2])
				return nil
			})
		},
	}
}

func newCreateNewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create-new <obituary-id> <person-name>",
		Short: "Mark a pending person for creation as a new record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).MarkCreateNew(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s will be created on commit\n", args[1])
				return nil
			})
		},
	}
}

func newRejectPersonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject-person <obituary-id> <person-name>",
		Short: "Exclude a pending person and their facts from the commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).RejectPerson(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s\n", args[1])
				return nil
			})
		},
	}
}

func newOverridePersonCommand(ctx *commandContext) *cobra.Command {
	var firstName, surname, gender string
	cmd := &cobra.Command{
		Use:   "override-person <obituary-id> <person-name>",
		Short: "Correct the name or gender a person will be created with",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).OverridePerson(cmd.Context(), args[0], args[1], firstName, surname, gender); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded overrides for %s\n", args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "replacement first name")
	cmd.Flags().StringVar(&surname, "surname", "", "replacement surname")
	cmd.Flags().StringVar(&gender, "gender", "", "replacement gender (male or female)")
	return cmd
}

func newOverrideValueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "override-value <fact-resolution-id> <value>",
		Short: "Replace the value a fact will be committed with",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseResolutionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := reviewer(ctx, st).OverrideFactValue(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fact resolution %d will commit %q\n", id, args[1])
				return nil
			})
		},
	}
}
