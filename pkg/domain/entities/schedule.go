package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/tree"
)

// ScheduleEntry is one row of a part's stock forecast. Quantity is signed:
// positive for incoming stock, negative for outgoing. SpeculativeQuantity is
// a projected, not-yet-committed shortfall and is zero or negative.
//
// A nil Date means the entry is immediately due (or overdue) and sorts before
// every dated entry.
type ScheduleEntry struct {
	Date                *time.Time
	Quantity            decimal.Decimal
	SpeculativeQuantity decimal.Decimal
	Title               string
	Label               string
	ReferenceURL        string
}

// RequirementsSummary aggregates upcoming demand and committed allocations
// for one part across build and sales orders.
type RequirementsSummary struct {
	PartID tree.ID

	AvailableStock decimal.Decimal
	OnOrder        decimal.Decimal

	RequiredBuildQuantity  decimal.Decimal
	AllocatedBuildQuantity decimal.Decimal
	RequiredSalesQuantity  decimal.Decimal
	AllocatedSalesQuantity decimal.Decimal

	// Required and Allocated are the build+sales totals.
	Required  decimal.Decimal
	Allocated decimal.Decimal
}
