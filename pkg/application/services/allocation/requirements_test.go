package allocation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmfg/stockcore/pkg/application/services/bom"
	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	storetest "github.com/openmfg/stockcore/pkg/infrastructure/testing"
)

// Exercises every term of the requirements summary for Fastener Steel:
// 10 in stock with 6 allocated to a build and 2 to a sales line, 3 pack-of-5
// units on order, a pending build for five Widget A consuming the inherited
// two-per-unit row, and an open sales line with 4 outstanding.
func TestLedger_Requirements(t *testing.T) {
	store := storetest.BuildWidgetCatalog()

	storetest.MustAdd(store,
		storetest.StockItem(500, 201, "10"),
		&entities.SupplierPart{ID: 800, PartID: 201, SKU: "FS-5PK", PackSize: storetest.Dec("5")},
		&entities.PurchaseOrder{ID: 810, Reference: "PO-810", Status: entities.PurchasePlaced},
		&entities.PurchaseOrderLine{ID: 811, OrderID: 810, SupplierPartID: 800, Quantity: storetest.Dec("4"), Received: storetest.Dec("1")},
		&entities.BuildOrder{ID: 600, Reference: "BO-600", PartID: 101, Quantity: storetest.Dec("5"), Status: entities.BuildPending},
		&entities.SalesOrder{ID: 700, Reference: "SO-700", Status: entities.SalesPending},
		&entities.SalesOrderLine{ID: 701, OrderID: 700, PartID: 201, Quantity: storetest.Dec("5"), Shipped: storetest.Dec("1")},
	)

	resolver := bom.NewResolver(store, store, store, nil)
	ledger := NewLedger(store, store, store, store, resolver, store, nil)
	ctx := context.Background()

	_, err := ledger.AllocateToBuild(ctx, 600, 1000, 500, storetest.Dec("6"), "tester")
	require.NoError(t, err)
	_, err = ledger.AllocateToSalesOrder(ctx, 701, 500, storetest.Dec("2"), "tester")
	require.NoError(t, err)

	summary, err := ledger.Requirements(ctx, 201)
	require.NoError(t, err)

	assert.True(t, summary.AvailableStock.Equal(storetest.Dec("2")), "10 - 6 build - 2 sales")
	assert.True(t, summary.OnOrder.Equal(storetest.Dec("15")), "3 outstanding x pack of 5")
	assert.True(t, summary.RequiredBuildQuantity.Equal(storetest.Dec("10")), "5 widgets x 2 fasteners")
	assert.True(t, summary.AllocatedBuildQuantity.Equal(storetest.Dec("6")))
	assert.True(t, summary.RequiredSalesQuantity.Equal(storetest.Dec("4")), "5 sold - 1 shipped")
	assert.True(t, summary.AllocatedSalesQuantity.Equal(storetest.Dec("2")))
	assert.True(t, summary.Required.Equal(storetest.Dec("14")))
	assert.True(t, summary.Allocated.Equal(storetest.Dec("8")))
}

// Inactive orders contribute nothing: cancelled builds, closed purchase
// orders, and shipped sales orders all drop out of the summary.
func TestLedger_Requirements_IgnoresClosedOrders(t *testing.T) {
	store := storetest.BuildWidgetCatalog()

	storetest.MustAdd(store,
		storetest.StockItem(500, 201, "10"),
		&entities.SupplierPart{ID: 800, PartID: 201, SKU: "FS-5PK", PackSize: storetest.Dec("5")},
		&entities.PurchaseOrder{ID: 810, Reference: "PO-810", Status: entities.PurchaseComplete},
		&entities.PurchaseOrderLine{ID: 811, OrderID: 810, SupplierPartID: 800, Quantity: storetest.Dec("4")},
		&entities.BuildOrder{ID: 600, Reference: "BO-600", PartID: 101, Quantity: storetest.Dec("5"), Status: entities.BuildCancelled},
		&entities.SalesOrder{ID: 700, Reference: "SO-700", Status: entities.SalesShipped},
		&entities.SalesOrderLine{ID: 701, OrderID: 700, PartID: 201, Quantity: storetest.Dec("5")},
	)

	resolver := bom.NewResolver(store, store, store, nil)
	ledger := NewLedger(store, store, store, store, resolver, store, nil)

	summary, err := ledger.Requirements(context.Background(), 201)
	require.NoError(t, err)

	assert.True(t, summary.AvailableStock.Equal(storetest.Dec("10")))
	assert.True(t, summary.OnOrder.IsZero())
	assert.True(t, summary.Required.IsZero())
	assert.True(t, summary.Allocated.IsZero())
}

// A template part aggregates its whole variant family.
func TestLedger_Requirements_TemplateAggregatesFamily(t *testing.T) {
	store := storetest.BuildWidgetCatalog()

	storetest.MustAdd(store,
		storetest.StockItem(500, 201, "10"),
		storetest.StockItem(501, 202, "4"),
	)

	resolver := bom.NewResolver(store, store, store, nil)
	ledger := NewLedger(store, store, store, store, resolver, store, nil)

	summary, err := ledger.Requirements(context.Background(), 200)
	require.NoError(t, err)
	assert.True(t, summary.AvailableStock.Equal(storetest.Dec("14")))
}

func TestLedger_Requirements_UnknownPart(t *testing.T) {
	store := storetest.BuildWidgetCatalog()
	resolver := bom.NewResolver(store, store, store, nil)
	ledger := NewLedger(store, store, store, store, resolver, store, nil)

	_, err := ledger.Requirements(context.Background(), 999)
	assert.True(t, errs.IsNotFound(err))
}
