package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmfg/stockcore/pkg/application/services/serials"
	"github.com/openmfg/stockcore/pkg/interfaces/cli/output"
	"github.com/openmfg/stockcore/pkg/tree"
)

func newSerialsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serials",
		Short: "Parse, validate, and assign serial numbers",
	}
	cmd.AddCommand(
		newSerialsInfoCommand(opts),
		newSerialsExtractCommand(opts),
		newSerialsCheckCommand(opts),
		newSerialsAssignCommand(opts),
	)
	return cmd
}

func newSerialsInfoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <part-id>",
		Short: "Show the latest and predicted next serial for a part family",
		Args:  cobra.ExactArgs(1),
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

			info, err := app.Serials.SerialInfo(cmd.Context(), partID)
			if err != nil {
				return err
			}
			return output.SerialInfo(cmd.OutOrStdout(), int64(partID), info, format)
		},
	}
}

func newSerialsExtractCommand(opts *rootOptions) *cobra.Command {
	var quantity int
	var latest string

	cmd := &cobra.Command{
		Use:   "extract <spec>",
		Short: "Expand a serial specification into individual serials",
		Long: `Expands a comma-separated serial specification, with a-b ranges and the
~ placeholder for the serial after --latest, into the individual serials
it names. The expansion must produce exactly --quantity distinct
serials. Needs no dataset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := serials.Extract(args[0], quantity, latest)
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of serials the specification must produce")
	cmd.Flags().StringVar(&latest, "latest", "", "latest existing serial, expanded by the ~ placeholder")
	return cmd
}

func newSerialsCheckCommand(opts *rootOptions) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "check <part-id> <spec>",
		Short: "Validate a serial specification against existing stock",
		Args:  cobra.ExactArgs(2),
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

			info, err := app.Serials.SerialInfo(cmd.Context(), partID)
			if err != nil {
				return err
			}
			candidates, err := serials.Extract(args[1], quantity, info.Latest)
			if err != nil {
				return err
			}

			checks, err := app.Serials.ValidateEach(cmd.Context(), candidates, partID)
			if err != nil {
				return err
			}
			return output.SerialChecks(cmd.OutOrStdout(), checks, format)
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of serials the specification must produce")
	return cmd
}

func newSerialsAssignCommand(opts *rootOptions) *cobra.Command {
	var (
		quantity int
		location int64
		actor    string
	)

	cmd := &cobra.Command{
		Use:   "assign <stock-item-id> <spec>",
		Short: "Split a stock item into serialized single-unit items",
		Long: `Converts quantity units of an unserialized stock item into individual
serialized items of quantity one each, reducing the source item
accordingly. The whole split commits atomically or not at all.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stockItemID, err := parsePartID(args[0])
			if err != nil {
				return fmt.Errorf("invalid stock item id: %q", args[0])
			}
			format, err := output.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			var locationID *tree.ID
			if location > 0 {
				id := tree.ID(location)
				locationID = &id
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			created, err := app.Serials.Serialize(cmd.Context(), stockItemID, args[1], quantity, locationID, actor)
			if err != nil {
				return err
			}
			return output.StockItems(cmd.OutOrStdout(), created, format)
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "units to serialize")
	cmd.Flags().Int64Var(&location, "location", 0, "destination location id (defaults to the source item's location)")
	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded in the audit trail")
	return cmd
}
