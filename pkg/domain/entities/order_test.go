package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openmfg/stockcore/pkg/domain/errs"
)

func TestBuildOrder_Remaining(t *testing.T) {
	b := &BuildOrder{Quantity: decimal.NewFromInt(8), Completed: decimal.NewFromInt(2)}
	assert.True(t, b.Remaining().Equal(decimal.NewFromInt(6)))

	// Over-completion clamps to zero.
	b.Completed = decimal.NewFromInt(10)
	assert.True(t, b.Remaining().IsZero())
}

func TestOrderLine_Outstanding(t *testing.T) {
	po := &PurchaseOrderLine{Quantity: decimal.NewFromInt(10), Received: decimal.NewFromInt(4)}
	assert.True(t, po.Outstanding().Equal(decimal.NewFromInt(6)))

	po.Received = decimal.NewFromInt(12)
	assert.True(t, po.Outstanding().IsZero())

	so := &SalesOrderLine{Quantity: decimal.NewFromInt(5), Shipped: decimal.NewFromInt(5)}
	assert.True(t, so.Outstanding().IsZero())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, BuildPending.Active())
	assert.True(t, BuildProduction.Active())
	assert.False(t, BuildCancelled.Active())
	assert.False(t, BuildComplete.Active())

	assert.True(t, PurchasePending.Open())
	assert.True(t, PurchasePlaced.Open())
	assert.False(t, PurchaseComplete.Open())
	assert.False(t, PurchaseCancelled.Open())

	assert.True(t, SalesPending.Open())
	assert.True(t, SalesInProgress.Open())
	assert.False(t, SalesShipped.Open())
}

func TestAllocationConstructors_RejectNonPositiveQuantity(t *testing.T) {
	_, err := NewBuildItem(1, 2, 3, 4, decimal.Zero)
	assert.True(t, errs.IsValidation(err))

	_, err = NewSalesOrderAllocation(1, 2, 3, decimal.NewFromInt(-1))
	assert.True(t, errs.IsValidation(err))
}
