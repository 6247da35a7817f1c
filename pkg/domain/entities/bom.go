package entities

import (
	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/tree"
)

// BomItem is one row of a bill of materials: the assembly requires Quantity
// units of the sub part per assembly unit built.
type BomItem struct {
	ID             tree.ID
	AssemblyPartID tree.ID
	SubPartID      tree.ID
	Quantity       decimal.Decimal
	Reference      string

	// Inherited rows defined on a template assembly apply to every variant
	// descendant of that template.
	Inherited bool

	// AllowVariants accepts any variant descendant of the sub part in place
	// of the sub part itself.
	AllowVariants bool

	Optional   bool
	Consumable bool
	Validated  bool

	// Substitutes lists alternate sub part ids acceptable for this row.
	Substitutes []tree.ID
}

// IsSubstitute reports whether partID appears in the row's substitute list.
func (b *BomItem) IsSubstitute(partID tree.ID) bool {
	for _, s := range b.Substitutes {
		if s == partID {
			return true
		}
	}
	return false
}

// NewBomItem creates a validated BomItem. Self-referencing rows are rejected;
// catalog-wide cycle checks are the responsibility of the BOM resolver.
func NewBomItem(id, assemblyPartID, subPartID tree.ID, quantity decimal.Decimal) (*BomItem, error) {
	if id <= 0 {
		return nil, errs.Validation("bom item id must be positive, got %d", id)
	}
	if assemblyPartID == subPartID {
		return nil, errs.Validation("bom item sub part cannot equal its assembly part (%d)", assemblyPartID)
	}
	if !quantity.IsPositive() {
		return nil, errs.Validation("bom item quantity must be positive, got %s", quantity)
	}
	return &BomItem{
		ID:             id,
		AssemblyPartID: assemblyPartID,
		SubPartID:      subPartID,
		Quantity:       quantity,
	}, nil
}

// BomValidationResult reports the validity state of an assembly's BOM.
type BomValidationResult struct {
	AssemblyPartID tree.ID
	Checksum       string
	Valid          bool
}
