package repositories

import (
	"context"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// StockRepository provides read access to physical stock.
type StockRepository interface {
	StockItem(ctx context.Context, id tree.ID) (*entities.StockItem, error)

	// StockItemsForParts returns the stock items whose part is any of the
	// given ids, in id order.
	StockItemsForParts(ctx context.Context, partIDs []tree.ID) ([]*entities.StockItem, error)

	// SerialsForParts returns every serial number in use across the given
	// parts.
	SerialsForParts(ctx context.Context, partIDs []tree.ID) ([]string, error)

	// LocationTree is the nested-set index over stock locations.
	LocationTree(ctx context.Context) (*tree.Index, error)

	// InstalledTree is the nested-set index over the installed-item
	// hierarchy (parent pointer: StockItem.BelongsTo).
	InstalledTree(ctx context.Context) (*tree.Index, error)
}
