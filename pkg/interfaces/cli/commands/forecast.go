package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openmfg/stockcore/pkg/interfaces/cli/output"
	"github.com/openmfg/stockcore/pkg/tree"
)

func newForecastCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast <part-id>",
		Short: "Print the merged scheduling forecast for a part",
		Long: `Merges expected stock movements for a part into one date-ordered
schedule: incoming purchase orders, outgoing sales orders, build order
output, and build order consumption. Entries without a date sort first.`,
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

			entries, err := app.Projector.Forecast(cmd.Context(), partID)
			if err != nil {
				return err
			}
			return output.Forecast(cmd.OutOrStdout(), entries, format)
		},
	}
}

func parsePartID(s string) (tree.ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid part id: %q", s)
	}
	return tree.ID(n), nil
}
