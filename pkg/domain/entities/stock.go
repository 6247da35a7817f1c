package entities

import (
	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/tree"
)

// StockStatus classifies the physical condition of a stock item.
type StockStatus int

const (
	StockOK StockStatus = iota
	StockAttention
	StockDamaged
	StockDestroyed
	StockRejected
	StockLost
	StockQuarantined
)

// String returns the status name.
func (s StockStatus) String() string {
	switch s {
	case StockOK:
		return "OK"
	case StockAttention:
		return "Attention"
	case StockDamaged:
		return "Damaged"
	case StockDestroyed:
		return "Destroyed"
	case StockRejected:
		return "Rejected"
	case StockLost:
		return "Lost"
	case StockQuarantined:
		return "Quarantined"
	default:
		return "Unknown"
	}
}

// Sellable reports whether items with this status count toward available
// stock.
func (s StockStatus) Sellable() bool {
	return s == StockOK || s == StockAttention
}

// StockLocation is one node of the nested physical-location hierarchy.
type StockLocation struct {
	ID       tree.ID
	Name     string
	ParentID *tree.ID

	// Structural locations group sub-locations but cannot hold stock items
	// directly.
	Structural bool
}

// TreeNode returns the location's node in the location tree.
func (l *StockLocation) TreeNode() tree.Node {
	return tree.Node{ID: l.ID, ParentID: l.ParentID, Structural: l.Structural}
}

// StockItem is a physical quantity of one part. Serialized items always have
// quantity one. BelongsTo forms the installed-item tree: a stock item
// installed into another has BelongsTo set and no location of its own.
type StockItem struct {
	ID         tree.ID
	PartID     tree.ID
	LocationID *tree.ID
	Quantity   decimal.Decimal
	Serial     string
	Batch      string
	BelongsTo  *tree.ID
	Status     StockStatus
}

// TreeNode returns the item's node in the installed-item hierarchy.
func (si *StockItem) TreeNode() tree.Node {
	return tree.Node{ID: si.ID, ParentID: si.BelongsTo}
}

// Serialized reports whether the item carries a serial number.
func (si *StockItem) Serialized() bool {
	return si.Serial != ""
}

// InStock reports whether the item contributes to available stock: a sellable
// status, positive quantity, and not installed into another item.
func (si *StockItem) InStock() bool {
	return si.Status.Sellable() && si.Quantity.IsPositive() && si.BelongsTo == nil
}

// NewStockItem creates a validated StockItem.
func NewStockItem(id, partID tree.ID, quantity decimal.Decimal) (*StockItem, error) {
	if id <= 0 {
		return nil, errs.Validation("stock item id must be positive, got %d", id)
	}
	if partID <= 0 {
		return nil, errs.Validation("stock item part id must be positive, got %d", partID)
	}
	if quantity.IsNegative() {
		return nil, errs.Validation("stock item quantity cannot be negative, got %s", quantity)
	}
	return &StockItem{ID: id, PartID: partID, Quantity: quantity, Status: StockOK}, nil
}
