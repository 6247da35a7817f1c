package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/tree"
)

// BuildStatus represents the lifecycle state of a build order.
type BuildStatus int

const (
	BuildPending BuildStatus = iota
	BuildProduction
	BuildCancelled
	BuildComplete
)

// String returns the status name.
func (s BuildStatus) String() string {
	switch s {
	case BuildPending:
		return "Pending"
	case BuildProduction:
		return "Production"
	case BuildCancelled:
		return "Cancelled"
	case BuildComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Active reports whether the build still consumes and produces stock.
func (s BuildStatus) Active() bool {
	return s == BuildPending || s == BuildProduction
}

// PurchaseOrderStatus represents the lifecycle state of a purchase order.
type PurchaseOrderStatus int

const (
	PurchasePending PurchaseOrderStatus = iota
	PurchasePlaced
	PurchaseComplete
	PurchaseCancelled
	PurchaseLost
	PurchaseReturned
)

// String returns the status name.
func (s PurchaseOrderStatus) String() string {
	switch s {
	case PurchasePending:
		return "Pending"
	case PurchasePlaced:
		return "Placed"
	case PurchaseComplete:
		return "Complete"
	case PurchaseCancelled:
		return "Cancelled"
	case PurchaseLost:
		return "Lost"
	case PurchaseReturned:
		return "Returned"
	default:
		return "Unknown"
	}
}

// Open reports whether incoming stock is still expected for the order.
func (s PurchaseOrderStatus) Open() bool {
	return s == PurchasePending || s == PurchasePlaced
}

// SalesOrderStatus represents the lifecycle state of a sales order.
type SalesOrderStatus int

const (
	SalesPending SalesOrderStatus = iota
	SalesInProgress
	SalesShipped
	SalesCancelled
	SalesReturned
)

// String returns the status name.
func (s SalesOrderStatus) String() string {
	switch s {
	case SalesPending:
		return "Pending"
	case SalesInProgress:
		return "In Progress"
	case SalesShipped:
		return "Shipped"
	case SalesCancelled:
		return "Cancelled"
	case SalesReturned:
		return "Returned"
	default:
		return "Unknown"
	}
}

// Open reports whether outgoing stock is still expected for the order.
func (s SalesOrderStatus) Open() bool {
	return s == SalesPending || s == SalesInProgress
}

// BuildOrder commissions Quantity units of a part. Completed tracks how many
// output units have been finished so far.
type BuildOrder struct {
	ID         tree.ID
	Reference  string
	PartID     tree.ID
	Quantity   decimal.Decimal
	Completed  decimal.Decimal
	Status     BuildStatus
	TargetDate *time.Time
}

// Remaining returns the outstanding output quantity, never negative.
func (b *BuildOrder) Remaining() decimal.Decimal {
	r := b.Quantity.Sub(b.Completed)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// BuildItem allocates a quantity of one stock item against a build order's
// requirement for one BOM row.
type BuildItem struct {
	ID          tree.ID
	BuildID     tree.ID
	BomItemID   tree.ID
	StockItemID tree.ID
	Quantity    decimal.Decimal
}

// NewBuildItem creates a validated BuildItem.
func NewBuildItem(id, buildID, bomItemID, stockItemID tree.ID, quantity decimal.Decimal) (*BuildItem, error) {
	if !quantity.IsPositive() {
		return nil, errs.Validation("build allocation quantity must be positive, got %s", quantity)
	}
	return &BuildItem{
		ID:          id,
		BuildID:     buildID,
		BomItemID:   bomItemID,
		StockItemID: stockItemID,
		Quantity:    quantity,
	}, nil
}

// PurchaseOrder groups incoming purchase order lines.
type PurchaseOrder struct {
	ID         tree.ID
	Reference  string
	Status     PurchaseOrderStatus
	TargetDate *time.Time
}

// PurchaseOrderLine orders a quantity of one supplier part. Received tracks
// how many ordered units have arrived.
type PurchaseOrderLine struct {
	ID             tree.ID
	OrderID        tree.ID
	SupplierPartID tree.ID
	Quantity       decimal.Decimal
	Received       decimal.Decimal
	TargetDate     *time.Time
}

// Outstanding returns the not-yet-received ordered quantity, never negative.
func (l *PurchaseOrderLine) Outstanding() decimal.Decimal {
	r := l.Quantity.Sub(l.Received)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// SalesOrder groups outgoing sales order lines.
type SalesOrder struct {
	ID         tree.ID
	Reference  string
	Status     SalesOrderStatus
	TargetDate *time.Time
}

// SalesOrderLine sells a quantity of one part. Shipped tracks how many units
// have left stock.
type SalesOrderLine struct {
	ID         tree.ID
	OrderID    tree.ID
	PartID     tree.ID
	Quantity   decimal.Decimal
	Shipped    decimal.Decimal
	TargetDate *time.Time
}

// Outstanding returns the not-yet-shipped sold quantity, never negative.
func (l *SalesOrderLine) Outstanding() decimal.Decimal {
	r := l.Quantity.Sub(l.Shipped)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// SalesOrderAllocation reserves a quantity of one stock item against a sales
// order line.
type SalesOrderAllocation struct {
	ID          tree.ID
	LineID      tree.ID
	StockItemID tree.ID
	Quantity    decimal.Decimal
}

// NewSalesOrderAllocation creates a validated SalesOrderAllocation.
func NewSalesOrderAllocation(id, lineID, stockItemID tree.ID, quantity decimal.Decimal) (*SalesOrderAllocation, error) {
	if !quantity.IsPositive() {
		return nil, errs.Validation("sales allocation quantity must be positive, got %s", quantity)
	}
	return &SalesOrderAllocation{
		ID:          id,
		LineID:      lineID,
		StockItemID: stockItemID,
		Quantity:    quantity,
	}, nil
}
