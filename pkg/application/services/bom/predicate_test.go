package bom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

func TestPredicateComposition(t *testing.T) {
	inherited := Predicate(func(item *entities.BomItem) bool { return item.Inherited })
	forAssembly := func(id tree.ID) Predicate {
		return func(item *entities.BomItem) bool { return item.AssemblyPartID == id }
	}

	row := &entities.BomItem{ID: 1, AssemblyPartID: 10, SubPartID: 20, Inherited: true}

	testCases := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"any matches one", Any(forAssembly(99), inherited), true},
		{"any matches none", Any(forAssembly(99), Not(inherited)), false},
		{"all matches every", All(forAssembly(10), inherited), true},
		{"all rejects on one miss", All(forAssembly(10), Not(inherited)), false},
		{"not inverts", Not(forAssembly(99)), true},
		{"empty any rejects", Any(), false},
		{"empty all accepts", All(), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pred(row))
		})
	}
}
