// Package entities defines the stockcore data model: parts and their variant
// hierarchy, bills of materials, physical stock, and build/purchase/sales
// orders with their allocation records.
//
// Quantities are decimal throughout; entities never use floats.
package entities

import (
	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Part is a catalog entry. Parts form a variant hierarchy: VariantOf points at
// the template part this part specializes, and doubles as the parent pointer
// of the part tree.
type Part struct {
	ID         tree.ID
	Name       string
	IsTemplate bool
	Trackable  bool
	Assembly   bool
	VariantOf  *tree.ID

	// PackSize applies when the part is received against a purchase order
	// line: one ordered unit yields PackSize stock units.
	PackSize decimal.Decimal

	MinimumStock      decimal.Decimal
	DefaultLocationID *tree.ID
	CategoryID        *tree.ID

	// BomChecksum is the checksum stored by the last successful BOM
	// validation, empty if the BOM has never been validated.
	BomChecksum string
}

// TreeNode returns the part's node in the variant hierarchy. Template parts
// are structural: they organize variants but hold no stock themselves.
func (p *Part) TreeNode() tree.Node {
	return tree.Node{ID: p.ID, ParentID: p.VariantOf, Structural: p.IsTemplate}
}

// EffectivePackSize returns PackSize, defaulting to one when unset.
func (p *Part) EffectivePackSize() decimal.Decimal {
	if p.PackSize.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.PackSize
}

// NewPart creates a validated Part.
func NewPart(id tree.ID, name string) (*Part, error) {
	if id <= 0 {
		return nil, errs.Validation("part id must be positive, got %d", id)
	}
	if name == "" {
		return nil, errs.Validation("part name cannot be empty")
	}
	return &Part{ID: id, Name: name, PackSize: decimal.NewFromInt(1)}, nil
}

// SupplierPart links a part to a supplier's sales unit. A purchase order line
// referencing a supplier part receives PackSize stock units per ordered unit.
type SupplierPart struct {
	ID       tree.ID
	PartID   tree.ID
	SKU      string
	PackSize decimal.Decimal
}

// EffectivePackSize returns PackSize, defaulting to one when unset.
func (sp *SupplierPart) EffectivePackSize() decimal.Decimal {
	if sp.PackSize.IsZero() {
		return decimal.NewFromInt(1)
	}
	return sp.PackSize
}

// PartCategory is one node of the hierarchical part catalog.
type PartCategory struct {
	ID       tree.ID
	Name     string
	ParentID *tree.ID

	// Structural categories organize child categories but cannot hold parts
	// directly.
	Structural bool
}

// TreeNode returns the category's node in the category tree.
func (c *PartCategory) TreeNode() tree.Node {
	return tree.Node{ID: c.ID, ParentID: c.ParentID, Structural: c.Structural}
}
