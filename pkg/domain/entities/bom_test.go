package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/tree"
)

func TestNewBomItem_Validation(t *testing.T) {
	item, err := NewBomItem(1, 10, 20, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, tree.ID(10), item.AssemblyPartID)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))

	testCases := []struct {
		name       string
		id         tree.ID
		assemblyID tree.ID
		subPartID  tree.ID
		quantity   decimal.Decimal
	}{
		{"non-positive id", 0, 10, 20, decimal.NewFromInt(1)},
		{"self reference", 1, 10, 10, decimal.NewFromInt(1)},
		{"zero quantity", 1, 10, 20, decimal.Zero},
		{"negative quantity", 1, 10, 20, decimal.NewFromInt(-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBomItem(tc.id, tc.assemblyID, tc.subPartID, tc.quantity)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestBomItem_IsSubstitute(t *testing.T) {
	item := &BomItem{ID: 1, AssemblyPartID: 10, SubPartID: 20, Substitutes: []tree.ID{21, 22}}

	assert.True(t, item.IsSubstitute(21))
	assert.True(t, item.IsSubstitute(22))
	assert.False(t, item.IsSubstitute(20), "the primary sub part is not a substitute")
	assert.False(t, item.IsSubstitute(99))
}
