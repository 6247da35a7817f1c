package allocation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Requirements aggregates a part's stock position against upcoming build and
// sales demand: available stock across the part's variant family, incoming
// purchase quantity, and required versus allocated quantities per order type.
func (l *Ledger) Requirements(ctx context.Context, partID tree.ID) (*entities.RequirementsSummary, error) {
	if _, err := l.parts.Part(ctx, partID); err != nil {
		return nil, err
	}
	variants, err := l.parts.VariantTree(ctx)
	if err != nil {
		return nil, err
	}
	family, err := variants.Descendants(partID, true, tree.Unbounded)
	if err != nil {
		return nil, err
	}

	summary := &entities.RequirementsSummary{PartID: partID}

	if err := l.sumStockPosition(ctx, family, summary); err != nil {
		return nil, err
	}
	if err := l.sumOnOrder(ctx, family, summary); err != nil {
		return nil, err
	}
	if err := l.sumBuildRequirements(ctx, partID, summary); err != nil {
		return nil, err
	}
	if err := l.sumSalesRequirements(ctx, partID, summary); err != nil {
		return nil, err
	}

	summary.Required = summary.RequiredBuildQuantity.Add(summary.RequiredSalesQuantity)
	summary.Allocated = summary.AllocatedBuildQuantity.Add(summary.AllocatedSalesQuantity)
	return summary, nil
}

// sumStockPosition computes available stock and the allocated build/sales
// totals over the part family's stock items.
func (l *Ledger) sumStockPosition(ctx context.Context, family []tree.ID, summary *entities.RequirementsSummary) error {
	items, err := l.stock.StockItemsForParts(ctx, family)
	if err != nil {
		return err
	}
	for _, item := range items {
		if !item.InStock() {
			continue
		}
		builds, sales, err := l.orders.AllocationsForStockItem(ctx, item.ID)
		if err != nil {
			return err
		}

		allocated := decimal.Zero
		for _, row := range builds {
			build, err := l.orders.BuildOrder(ctx, row.BuildID)
			if err != nil {
				return err
			}
			if !build.Status.Active() {
				continue
			}
			allocated = allocated.Add(row.Quantity)
			summary.AllocatedBuildQuantity = summary.AllocatedBuildQuantity.Add(row.Quantity)
		}
		for _, row := range sales {
			line, err := l.orders.SalesOrderLine(ctx, row.LineID)
			if err != nil {
				return err
			}
			order, err := l.orders.SalesOrder(ctx, line.OrderID)
			if err != nil {
				return err
			}
			if !order.Status.Open() {
				continue
			}
			allocated = allocated.Add(row.Quantity)
			summary.AllocatedSalesQuantity = summary.AllocatedSalesQuantity.Add(row.Quantity)
		}

		summary.AvailableStock = summary.AvailableStock.Add(item.Quantity.Sub(allocated))
	}
	return nil
}

// sumOnOrder totals outstanding purchase quantity, in stock units, across the
// part family.
func (l *Ledger) sumOnOrder(ctx context.Context, family []tree.ID, summary *entities.RequirementsSummary) error {
	for _, pid := range family {
		lines, err := l.orders.OpenPurchaseLines(ctx, pid)
		if err != nil {
			return err
		}
		for _, line := range lines {
			sp, err := l.parts.SupplierPart(ctx, line.SupplierPartID)
			if err != nil {
				return err
			}
			summary.OnOrder = summary.OnOrder.Add(line.Outstanding().Mul(sp.EffectivePackSize()))
		}
	}
	return nil
}

// sumBuildRequirements totals what active builds still require of this part,
// walking every BOM row the part is used in and visiting each build once.
func (l *Ledger) sumBuildRequirements(ctx context.Context, partID tree.ID, summary *entities.RequirementsSummary) error {
	rows, err := l.resolver.UsedIn(ctx, partID)
	if err != nil {
		return err
	}
	seen := make(map[tree.ID]struct{})
	for _, row := range rows {
		assemblies, err := l.resolver.AssembliesFor(ctx, row)
		if err != nil {
			return err
		}
		builds, err := l.orders.ActiveBuildsForParts(ctx, assemblies)
		if err != nil {
			return err
		}
		for _, build := range builds {
			if _, dup := seen[build.ID]; dup {
				continue
			}
			seen[build.ID] = struct{}{}
			required, err := l.RequiredQuantity(ctx, build.ID, row.ID)
			if err != nil {
				return err
			}
			summary.RequiredBuildQuantity = summary.RequiredBuildQuantity.Add(required)
		}
	}
	return nil
}

// sumSalesRequirements totals outstanding quantity on open sales lines for
// the part.
func (l *Ledger) sumSalesRequirements(ctx context.Context, partID tree.ID, summary *entities.RequirementsSummary) error {
	lines, err := l.orders.OpenSalesLines(ctx, partID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		summary.RequiredSalesQuantity = summary.RequiredSalesQuantity.Add(line.Outstanding())
	}
	return nil
}
