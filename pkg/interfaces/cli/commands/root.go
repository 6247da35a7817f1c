// Package commands wires the stockcore services behind a cobra command tree.
// Every command loads a CSV dataset directory, runs one operation against the
// in-memory store, and renders the result to stdout.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openmfg/stockcore/pkg/application/services/allocation"
	"github.com/openmfg/stockcore/pkg/application/services/bom"
	"github.com/openmfg/stockcore/pkg/application/services/schedule"
	"github.com/openmfg/stockcore/pkg/application/services/serials"
	"github.com/openmfg/stockcore/pkg/infrastructure/repositories/csv"
	"github.com/openmfg/stockcore/pkg/infrastructure/repositories/memory"
)

// App bundles the loaded store and the services the commands call.
type App struct {
	Store     *memory.Store
	Resolver  *bom.Resolver
	Ledger    *allocation.Ledger
	Projector *schedule.Projector
	Serials   *serials.Allocator
	Logger    *zap.Logger
}

type rootOptions struct {
	dataDir string
	format  string
	logger  *zap.Logger
}

func (o *rootOptions) newApp() (*App, error) {
	if o.dataDir == "" {
		return nil, fmt.Errorf("no dataset directory: set --data or STOCKCORE_DATA")
	}

	store, err := csv.NewLoader().Load(o.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	resolver := bom.NewResolver(store, store, store, o.logger)
	ledger := allocation.NewLedger(store, store, store, store, resolver, store, o.logger)
	projector := schedule.NewProjector(store, store, store, resolver, ledger, o.logger)
	serialAlloc := serials.NewAllocator(store, store, store, o.logger)

	o.logger.Debug("dataset loaded", zap.String("dir", o.dataDir))

	return &App{
		Store:     store,
		Resolver:  resolver,
		Ledger:    ledger,
		Projector: projector,
		Serials:   serialAlloc,
		Logger:    o.logger,
	}, nil
}

// NewRootCommand builds the stockcore command tree. defaultDataDir seeds the
// --data flag, typically from the STOCKCORE_DATA environment variable.
func NewRootCommand(logger *zap.Logger, defaultDataDir string) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := &rootOptions{logger: logger}

	root := &cobra.Command{
		Use:   "stockcore",
		Short: "Inventory core: BOM resolution, allocation, scheduling, serials",
		Long: `stockcore operates on a CSV dataset directory and answers inventory
questions: effective bills of materials across the variant hierarchy,
stock allocation against build and sales orders, merged scheduling
forecasts, and serial number assignment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dataDir, "data", defaultDataDir, "dataset directory containing CSV files")
	root.PersistentFlags().StringVar(&opts.format, "format", "text", "output format: text or json")

	root.AddCommand(
		newForecastCommand(opts),
		newRequirementsCommand(opts),
		newBomCommand(opts),
		newSerialsCommand(opts),
		newAllocateCommand(opts),
	)

	return root
}
