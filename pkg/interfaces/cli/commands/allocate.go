package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAllocateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Reserve stock against build and sales orders",
	}
	cmd.AddCommand(
		newAllocateBuildCommand(opts),
		newAllocateSalesCommand(opts),
		newAvailableCommand(opts),
	)
	return cmd
}

func newAllocateBuildCommand(opts *rootOptions) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "build <build-id> <bom-item-id> <stock-item-id> <quantity>",
		Short: "Allocate stock to a build order requirement",
		Long: `Reserves a quantity of one stock item against a build order's
requirement for one BOM row. Fails without effect when the stock item
does not satisfy the row or the unallocated remainder is insufficient.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildID, err := parsePartID(args[0])
			if err != nil {
				return fmt.Errorf("invalid build id: %q", args[0])
			}
			bomItemID, err := parsePartID(args[1])
			if err != nil {
				return fmt.Errorf("invalid bom item id: %q", args[1])
			}
			stockItemID, err := parsePartID(args[2])
			if err != nil {
				return fmt.Errorf("invalid stock item id: %q", args[2])
			}
			quantity, err := decimal.NewFromString(args[3])
			if err != nil {
				return fmt.Errorf("invalid quantity: %q", args[3])
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			item, err := app.Ledger.AllocateToBuild(cmd.Context(), buildID, bomItemID, stockItemID, quantity, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allocated %s of stock item %d to build %d (allocation %d)\n",
				item.Quantity, item.StockItemID, item.BuildID, item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded in the audit trail")
	return cmd
}

func newAllocateSalesCommand(opts *rootOptions) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "sales <line-id> <stock-item-id> <quantity>",
		Short: "Allocate stock to a sales order line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lineID, err := parsePartID(args[0])
			if err != nil {
				return fmt.Errorf("invalid sales order line id: %q", args[0])
			}
			stockItemID, err := parsePartID(args[1])
			if err != nil {
				return fmt.Errorf("invalid stock item id: %q", args[1])
			}
			quantity, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity: %q", args[2])
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			alloc, err := app.Ledger.AllocateToSalesOrder(cmd.Context(), lineID, stockItemID, quantity, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allocated %s of stock item %d to sales line %d (allocation %d)\n",
				alloc.Quantity, alloc.StockItemID, alloc.LineID, alloc.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded in the audit trail")
	return cmd
}

func newAvailableCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "available <stock-item-id>",
		Short: "Show a stock item's unallocated remainder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stockItemID, err := parsePartID(args[0])
			if err != nil {
				return fmt.Errorf("invalid stock item id: %q", args[0])
			}

			app, err := opts.newApp()
			if err != nil {
				return err
			}

			available, err := app.Ledger.Available(cmd.Context(), stockItemID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stock item %d available: %s\n", stockItemID, available)
			return nil
		},
	}
}
