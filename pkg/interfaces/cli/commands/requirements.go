package commands

import (
	"github.com/spf13/cobra"

	"github.com/openmfg/stockcore/pkg/interfaces/cli/output"
)

func newRequirementsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "requirements <part-id>",
		Short: "Summarize stock position and open demand for a part",
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

			summary, err := app.Ledger.Requirements(cmd.Context(), partID)
			if err != nil {
				return err
			}
			return output.Requirements(cmd.OutOrStdout(), summary, format)
		},
	}
}
