package bom

import (
	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Predicate is a composable boolean expression over BomItems. Predicates are
// pure functions of the row and the indexes captured at construction time, so
// they can be combined and evaluated against any BomItem collection.
type Predicate func(item *entities.BomItem) bool

// Any matches a row accepted by at least one of the given predicates.
func Any(preds ...Predicate) Predicate {
	return func(item *entities.BomItem) bool {
		for _, p := range preds {
			if p(item) {
				return true
			}
		}
		return false
	}
}

// All matches a row accepted by every one of the given predicates.
func All(preds ...Predicate) Predicate {
	return func(item *entities.BomItem) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(item *entities.BomItem) bool {
		return !p(item)
	}
}

// usedInPredicate builds the "part is used in this BOM row" expression for
// one target part against a snapshot of the variant tree:
//
//  1. the row's sub part is the target,
//  2. the row is inherited and defined on an ancestor-or-self of the target,
//     so it propagates down to the target's variant subtree,
//  3. the target is listed as a substitute, or
//  4. the row allows variants and the target is a variant descendant of the
//     row's sub part.
func usedInPredicate(targetID tree.ID, variants *tree.Index) Predicate {
	direct := func(item *entities.BomItem) bool {
		return item.SubPartID == targetID
	}
	inherited := func(item *entities.BomItem) bool {
		return item.Inherited && variants.IsDescendantOf(targetID, item.AssemblyPartID, true)
	}
	substitute := func(item *entities.BomItem) bool {
		return item.IsSubstitute(targetID)
	}
	variant := func(item *entities.BomItem) bool {
		return item.AllowVariants && variants.IsDescendantOf(targetID, item.SubPartID, false)
	}
	return Any(direct, inherited, substitute, variant)
}
