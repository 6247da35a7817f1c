// Package schedule projects future supply and demand for a part into one
// chronologically ordered forecast, merging purchase orders, sales orders,
// and build orders that produce or consume the part.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openmfg/stockcore/pkg/application/services/allocation"
	"github.com/openmfg/stockcore/pkg/application/services/bom"
	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/repositories"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Entry titles, mirrored by the API layer's translations.
const (
	titleIncomingPurchase = "Incoming Purchase Order"
	titleOutgoingSales    = "Outgoing Sales Order"
	titleBuildOutput      = "Stock produced by Build Order"
	titleBuildConsumption = "Stock required for Build Order"
)

// Projector produces stock forecasts.
type Projector struct {
	parts    repositories.PartRepository
	stock    repositories.StockRepository
	orders   repositories.OrderRepository
	resolver *bom.Resolver
	ledger   *allocation.Ledger
	logger   *zap.Logger
}

// NewProjector creates a scheduling projector. A nil logger disables logging.
func NewProjector(
	parts repositories.PartRepository,
	stock repositories.StockRepository,
	orders repositories.OrderRepository,
	resolver *bom.Resolver,
	ledger *allocation.Ledger,
	logger *zap.Logger,
) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		parts:    parts,
		stock:    stock,
		orders:   orders,
		resolver: resolver,
		ledger:   ledger,
		logger:   logger,
	}
}

// Forecast returns the part's schedule entries, ascending by date. Entries
// without a date are treated as immediately due and sort before every dated
// entry; ties keep discovery order.
func (p *Projector) Forecast(ctx context.Context, partID tree.ID) ([]entities.ScheduleEntry, error) {
	if _, err := p.parts.Part(ctx, partID); err != nil {
		return nil, err
	}

	var entries []entities.ScheduleEntry

	incoming, err := p.purchaseEntries(ctx, partID)
	if err != nil {
		return nil, err
	}
	entries = append(entries, incoming...)

	outgoing, err := p.salesEntries(ctx, partID)
	if err != nil {
		return nil, err
	}
	entries = append(entries, outgoing...)

	produced, err := p.buildOutputEntries(ctx, partID)
	if err != nil {
		return nil, err
	}
	entries = append(entries, produced...)

	consumed, err := p.buildConsumptionEntries(ctx, partID)
	if err != nil {
		return nil, err
	}
	entries = append(entries, consumed...)

	// Null dates first, then ascending; stable to preserve discovery order
	// on ties.
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Date, entries[j].Date
		if di == nil || dj == nil {
			return di == nil && dj != nil
		}
		return di.Before(*dj)
	})

	p.logger.Debug("forecast computed",
		zap.Int64("part", int64(partID)),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// purchaseEntries adds open purchase order lines as incoming stock, scaled by
// the supplier part's pack size.
func (p *Projector) purchaseEntries(ctx context.Context, partID tree.ID) ([]entities.ScheduleEntry, error) {
	lines, err := p.orders.OpenPurchaseLines(ctx, partID)
	if err != nil {
		return nil, err
	}
	var entries []entities.ScheduleEntry
	for _, line := range lines {
		order, err := p.orders.PurchaseOrder(ctx, line.OrderID)
		if err != nil {
			return nil, err
		}
		sp, err := p.parts.SupplierPart(ctx, line.SupplierPartID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entities.ScheduleEntry{
			Date:         dateOr(line.TargetDate, order.TargetDate),
			Quantity:     line.Outstanding().Mul(sp.EffectivePackSize()),
			Title:        titleIncomingPurchase,
			Label:        order.Reference,
			ReferenceURL: fmt.Sprintf("/order/purchase-order/%d/", order.ID),
		})
	}
	return entries, nil
}

// salesEntries adds open sales order lines as outgoing stock.
func (p *Projector) salesEntries(ctx context.Context, partID tree.ID) ([]entities.ScheduleEntry, error) {
	lines, err := p.orders.OpenSalesLines(ctx, partID)
	if err != nil {
		return nil, err
	}
	var entries []entities.ScheduleEntry
	for _, line := range lines {
		order, err := p.orders.SalesOrder(ctx, line.OrderID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entities.ScheduleEntry{
			Date:         dateOr(line.TargetDate, order.TargetDate),
			Quantity:     line.Outstanding().Neg(),
			Title:        titleOutgoingSales,
			Label:        order.Reference,
			ReferenceURL: fmt.Sprintf("/order/sales-order/%d/", order.ID),
		})
	}
	return entries, nil
}

// buildOutputEntries adds active builds producing the part as incoming stock.
func (p *Projector) buildOutputEntries(ctx context.Context, partID tree.ID) ([]entities.ScheduleEntry, error) {
	builds, err := p.orders.ActiveBuildsForParts(ctx, []tree.ID{partID})
	if err != nil {
		return nil, err
	}
	var entries []entities.ScheduleEntry
	for _, build := range builds {
		entries = append(entries, entities.ScheduleEntry{
			Date:         build.TargetDate,
			Quantity:     build.Remaining(),
			Title:        titleBuildOutput,
			Label:        build.Reference,
			ReferenceURL: fmt.Sprintf("/build/%d/", build.ID),
		})
	}
	return entries, nil
}

// buildConsumptionEntries adds active builds consuming the part, found
// through the used-in filter and expanded through inheritance to variant
// builds. Each build is visited at most once even when several BOM rows
// reference it.
//
// The firm quantity is what has actually been allocated of this part against
// the build; when the build's requirement is not fully allocated the
// remainder appears as a negative speculative quantity.
func (p *Projector) buildConsumptionEntries(ctx context.Context, partID tree.ID) ([]entities.ScheduleEntry, error) {
	rows, err := p.resolver.UsedIn(ctx, partID)
	if err != nil {
		return nil, err
	}

	var entries []entities.ScheduleEntry
	seen := make(map[tree.ID]struct{})

	for _, row := range rows {
		assemblies, err := p.resolver.AssembliesFor(ctx, row)
		if err != nil {
			return nil, err
		}
		builds, err := p.orders.ActiveBuildsForParts(ctx, assemblies)
		if err != nil {
			return nil, err
		}
		for _, build := range builds {
			if _, dup := seen[build.ID]; dup {
				continue
			}
			seen[build.ID] = struct{}{}

			required, err := p.ledger.RequiredQuantity(ctx, build.ID, row.ID)
			if err != nil {
				return nil, err
			}

			allocations, err := p.orders.BuildItems(ctx, build.ID, row.ID)
			if err != nil {
				return nil, err
			}
			partAllocated := decimal.Zero
			totalAllocated := decimal.Zero
			for _, alloc := range allocations {
				totalAllocated = totalAllocated.Add(alloc.Quantity)
				item, err := p.stock.StockItem(ctx, alloc.StockItemID)
				if err != nil {
					return nil, err
				}
				if item.PartID == partID {
					partAllocated = partAllocated.Add(alloc.Quantity)
				}
			}

			speculative := decimal.Zero
			if required.GreaterThan(totalAllocated) {
				speculative = required.Sub(totalAllocated).Neg()
			}

			entries = append(entries, entities.ScheduleEntry{
				Date:                build.TargetDate,
				Quantity:            partAllocated.Neg(),
				SpeculativeQuantity: speculative,
				Title:               titleBuildConsumption,
				Label:               build.Reference,
				ReferenceURL:        fmt.Sprintf("/build/%d/", build.ID),
			})
		}
	}
	return entries, nil
}

// dateOr applies the line-then-order target date fallback rule.
func dateOr(primary, fallback *time.Time) *time.Time {
	if primary != nil {
		return primary
	}
	return fallback
}
