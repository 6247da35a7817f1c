package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmfg/stockcore/pkg/interfaces/cli/output"
)

func newBomCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bom",
		Short: "Inspect and validate bills of materials",
	}
	cmd.AddCommand(
		newBomShowCommand(opts),
		newBomValidateCommand(opts),
		newBomUsedInCommand(opts),
	)
	return cmd
}

func newBomShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <assembly-part-id>",
		Short: "Print the effective BOM of an assembly, inherited rows included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assemblyID, err := parsePartID(args[0])
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			lines, err := app.Resolver.EffectiveBom(cmd.Context(), assemblyID)
			if err != nil {
				return err
			}
			return output.EffectiveBom(cmd.OutOrStdout(), int64(assemblyID), lines, format)
		},
	}
}

func newBomValidateCommand(opts *rootOptions) *cobra.Command {
	var apply bool
	var actor string

	cmd := &cobra.Command{
		Use:   "validate <assembly-part-id>",
		Short: "Check whether an assembly's BOM matches its validated checksum",
		Long: `Without --apply, reports the current validation state. With --apply,
marks every direct BOM row validated and stores the current checksum on
the assembly, after checking the BOM graph for cycles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assemblyID, err := parsePartID(args[0])
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if apply {
				if err := app.Resolver.CheckAcyclic(ctx, assemblyID); err != nil {
					return err
				}
				if err := app.Resolver.Validate(ctx, assemblyID, actor); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assembly %d validated\n", assemblyID)
			}

			result, err := app.Resolver.ValidationState(ctx, assemblyID)
			if err != nil {
				return err
			}
			return output.Validation(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "store the current checksum as validated")
	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded in the audit trail")
	return cmd
}

func newBomUsedInCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "used-in <part-id>",
		Short: "List the BOM rows that can consume a part",
		Long: `Lists every BOM row the part satisfies: rows naming it directly, rows
inherited from a template ancestor, rows listing it as a substitute,
and variant-accepting rows naming one of its template ancestors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partID, err := parsePartID(args[0])
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			items, err := app.Resolver.UsedIn(cmd.Context(), partID)
			if err != nil {
				return err
			}
			return output.UsedIn(cmd.OutOrStdout(), int64(partID), items, format)
		},
	}
}
