package repositories

import (
	"context"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// OrderRepository provides read access to build, purchase, and sales orders
// and their allocation rows.
type OrderRepository interface {
	BuildOrder(ctx context.Context, id tree.ID) (*entities.BuildOrder, error)

	// ActiveBuildsForParts returns builds with an active status producing any
	// of the given parts, in id order.
	ActiveBuildsForParts(ctx context.Context, partIDs []tree.ID) ([]*entities.BuildOrder, error)

	// BuildItems returns the allocation rows for one (build, bom item) pair.
	BuildItems(ctx context.Context, buildID, bomItemID tree.ID) ([]*entities.BuildItem, error)

	// AllocationsForStockItem returns every build and sales allocation row
	// referencing the stock item.
	AllocationsForStockItem(ctx context.Context, stockItemID tree.ID) ([]*entities.BuildItem, []*entities.SalesOrderAllocation, error)

	PurchaseOrder(ctx context.Context, id tree.ID) (*entities.PurchaseOrder, error)

	// OpenPurchaseLines returns lines of open purchase orders whose supplier
	// part resolves to the given part.
	OpenPurchaseLines(ctx context.Context, partID tree.ID) ([]*entities.PurchaseOrderLine, error)

	SalesOrder(ctx context.Context, id tree.ID) (*entities.SalesOrder, error)
	SalesOrderLine(ctx context.Context, id tree.ID) (*entities.SalesOrderLine, error)

	// OpenSalesLines returns lines of open sales orders for the given part.
	OpenSalesLines(ctx context.Context, partID tree.ID) ([]*entities.SalesOrderLine, error)
}
