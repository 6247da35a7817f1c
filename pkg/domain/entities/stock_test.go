package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/tree"
)

func TestStockStatus_Sellable(t *testing.T) {
	testCases := []struct {
		status   StockStatus
		sellable bool
	}{
		{StockOK, true},
		{StockAttention, true},
		{StockDamaged, false},
		{StockDestroyed, false},
		{StockRejected, false},
		{StockLost, false},
		{StockQuarantined, false},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.sellable, tc.status.Sellable())
		})
	}
}

func TestStockItem_InStock(t *testing.T) {
	belongsTo := tree.ID(5)

	testCases := []struct {
		name    string
		item    StockItem
		inStock bool
	}{
		{"sellable positive", StockItem{Quantity: decimal.NewFromInt(3), Status: StockOK}, true},
		{"zero quantity", StockItem{Quantity: decimal.Zero, Status: StockOK}, false},
		{"quarantined", StockItem{Quantity: decimal.NewFromInt(3), Status: StockQuarantined}, false},
		{"installed into another item", StockItem{Quantity: decimal.NewFromInt(1), Status: StockOK, BelongsTo: &belongsTo}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.inStock, tc.item.InStock())
		})
	}
}

func TestStockItem_Serialized(t *testing.T) {
	assert.False(t, (&StockItem{}).Serialized())
	assert.True(t, (&StockItem{Serial: "1001"}).Serialized())
}

func TestNewStockItem_Validation(t *testing.T) {
	item, err := NewStockItem(1, 10, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, StockOK, item.Status)

	_, err = NewStockItem(0, 10, decimal.NewFromInt(5))
	assert.True(t, errs.IsValidation(err))

	_, err = NewStockItem(1, 0, decimal.NewFromInt(5))
	assert.True(t, errs.IsValidation(err))

	_, err = NewStockItem(1, 10, decimal.NewFromInt(-1))
	assert.True(t, errs.IsValidation(err))
}

func TestPart_EffectivePackSize(t *testing.T) {
	p := &Part{}
	assert.True(t, p.EffectivePackSize().Equal(decimal.NewFromInt(1)))

	p.PackSize = decimal.NewFromInt(25)
	assert.True(t, p.EffectivePackSize().Equal(decimal.NewFromInt(25)))

	sp := &SupplierPart{}
	assert.True(t, sp.EffectivePackSize().Equal(decimal.NewFromInt(1)))
}
