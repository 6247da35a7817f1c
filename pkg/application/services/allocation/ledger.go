// Package allocation enforces the allocation-safety invariant: the total
// quantity allocated from a stock item to build and sales orders never
// exceeds the item's quantity. All mutations run inside a single store
// transaction and record the acting user.
package allocation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openmfg/stockcore/pkg/application/services/bom"
	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/domain/repositories"
	"github.com/openmfg/stockcore/pkg/tree"
)

// AllocationKind distinguishes the two allocation row types.
type AllocationKind int

const (
	BuildAllocation AllocationKind = iota
	SalesAllocation
)

// String returns the allocation kind name.
func (k AllocationKind) String() string {
	switch k {
	case BuildAllocation:
		return "BuildAllocation"
	case SalesAllocation:
		return "SalesAllocation"
	default:
		return "Unknown"
	}
}

// AllocationRef identifies one allocation row for deallocation.
type AllocationRef struct {
	Kind AllocationKind
	ID   tree.ID
}

// Ledger tracks and validates stock allocations against build and sales
// orders.
type Ledger struct {
	parts    repositories.PartRepository
	boms     repositories.BomRepository
	stock    repositories.StockRepository
	orders   repositories.OrderRepository
	resolver *bom.Resolver
	txr      repositories.Transactor
	logger   *zap.Logger
}

// NewLedger creates an allocation ledger. A nil logger disables logging.
func NewLedger(
	parts repositories.PartRepository,
	boms repositories.BomRepository,
	stock repositories.StockRepository,
	orders repositories.OrderRepository,
	resolver *bom.Resolver,
	txr repositories.Transactor,
	logger *zap.Logger,
) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		parts:    parts,
		boms:     boms,
		stock:    stock,
		orders:   orders,
		resolver: resolver,
		txr:      txr,
		logger:   logger,
	}
}

// Available returns the stock item's quantity minus everything already
// allocated from it.
func (l *Ledger) Available(ctx context.Context, stockItemID tree.ID) (decimal.Decimal, error) {
	item, err := l.stock.StockItem(ctx, stockItemID)
	if err != nil {
		return decimal.Zero, err
	}
	builds, sales, err := l.orders.AllocationsForStockItem(ctx, stockItemID)
	if err != nil {
		return decimal.Zero, err
	}
	return item.Quantity.Sub(sumAllocations(builds, sales)), nil
}

func sumAllocations(builds []*entities.BuildItem, sales []*entities.SalesOrderAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, b := range builds {
		total = total.Add(b.Quantity)
	}
	for _, s := range sales {
		total = total.Add(s.Quantity)
	}
	return total
}

// RequiredQuantity returns how much of a BOM row's sub part the build still
// requires. Trackable sub parts are consumed per output unit, so outstanding
// outputs drive the figure; non-trackable sub parts are consumed at whole-
// order granularity.
func (l *Ledger) RequiredQuantity(ctx context.Context, buildID, bomItemID tree.ID) (decimal.Decimal, error) {
	build, err := l.orders.BuildOrder(ctx, buildID)
	if err != nil {
		return decimal.Zero, err
	}
	item, err := l.boms.BomItem(ctx, bomItemID)
	if err != nil {
		return decimal.Zero, err
	}
	subPart, err := l.parts.Part(ctx, item.SubPartID)
	if err != nil {
		return decimal.Zero, err
	}
	if subPart.Trackable {
		return build.Remaining().Mul(item.Quantity), nil
	}
	return build.Quantity.Mul(item.Quantity), nil
}

// AllocateToBuild reserves quantity units of a stock item against a build
// order's requirement for one BOM row. It fails with a ValidationError when
// the request exceeds the item's availability (never clamping) or when the
// item's part does not satisfy the BOM row.
func (l *Ledger) AllocateToBuild(ctx context.Context, buildID, bomItemID, stockItemID tree.ID, quantity decimal.Decimal, actor string) (*entities.BuildItem, error) {
	if !quantity.IsPositive() {
		return nil, errs.Validation("allocation quantity must be positive").
			WithField("quantity", "got %s", quantity)
	}
	if _, err := l.orders.BuildOrder(ctx, buildID); err != nil {
		return nil, err
	}
	bomItem, err := l.boms.BomItem(ctx, bomItemID)
	if err != nil {
		return nil, err
	}
	stockItem, err := l.stock.StockItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}

	ok, err := l.resolver.AcceptsPart(ctx, bomItem, stockItem.PartID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Validation("stock item part does not match BOM row").
			WithField("stock_item", "part %d is not part %d nor an accepted substitute or variant",
				stockItem.PartID, bomItem.SubPartID)
	}

	var created *entities.BuildItem
	err = l.txr.Transact(ctx, func(tx repositories.Tx) error {
		if err := checkAvailable(tx, stockItemID, quantity); err != nil {
			return err
		}
		row, err := entities.NewBuildItem(tx.NextID(), buildID, bomItemID, stockItemID, quantity)
		if err != nil {
			return err
		}
		tx.CreateBuildItem(row)
		tx.Audit(entities.NewAuditEntry(actor, "allocation.build",
			fmt.Sprintf("stock item %d x %s to build %d (bom item %d)", stockItemID, quantity, buildID, bomItemID)))
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("allocated stock to build",
		zap.Int64("build", int64(buildID)),
		zap.Int64("stock_item", int64(stockItemID)),
		zap.String("quantity", quantity.String()),
		zap.String("actor", actor))
	return created, nil
}

// AllocateToSalesOrder reserves quantity units of a stock item against a
// sales order line. The item's part must be the line's part or one of its
// variant descendants.
func (l *Ledger) AllocateToSalesOrder(ctx context.Context, lineID, stockItemID tree.ID, quantity decimal.Decimal, actor string) (*entities.SalesOrderAllocation, error) {
	if !quantity.IsPositive() {
		return nil, errs.Validation("allocation quantity must be positive").
			WithField("quantity", "got %s", quantity)
	}
	line, err := l.orders.SalesOrderLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	stockItem, err := l.stock.StockItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}

	if stockItem.PartID != line.PartID {
		variants, err := l.parts.VariantTree(ctx)
		if err != nil {
			return nil, err
		}
		if !variants.IsDescendantOf(stockItem.PartID, line.PartID, false) {
			return nil, errs.Validation("stock item part does not match sales order line").
				WithField("stock_item", "part %d is not part %d nor one of its variants",
					stockItem.PartID, line.PartID)
		}
	}

	var created *entities.SalesOrderAllocation
	err = l.txr.Transact(ctx, func(tx repositories.Tx) error {
		if err := checkAvailable(tx, stockItemID, quantity); err != nil {
			return err
		}
		row, err := entities.NewSalesOrderAllocation(tx.NextID(), lineID, stockItemID, quantity)
		if err != nil {
			return err
		}
		tx.CreateSalesOrderAllocation(row)
		tx.Audit(entities.NewAuditEntry(actor, "allocation.sales",
			fmt.Sprintf("stock item %d x %s to sales line %d", stockItemID, quantity, lineID)))
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("allocated stock to sales order",
		zap.Int64("line", int64(lineID)),
		zap.Int64("stock_item", int64(stockItemID)),
		zap.String("quantity", quantity.String()),
		zap.String("actor", actor))
	return created, nil
}

// checkAvailable re-derives availability under the transaction lock so two
// concurrent allocations cannot both observe sufficient stock.
func checkAvailable(tx repositories.Tx, stockItemID tree.ID, quantity decimal.Decimal) error {
	item, err := tx.StockItem(stockItemID)
	if err != nil {
		return err
	}
	builds, sales, err := tx.AllocationsForStockItem(stockItemID)
	if err != nil {
		return err
	}
	available := item.Quantity.Sub(sumAllocations(builds, sales))
	if quantity.GreaterThan(available) {
		return errs.Validation("insufficient stock").
			WithField("quantity", "requested %s but only %s available on stock item %d",
				quantity, available, stockItemID)
	}
	return nil
}

// Deallocate removes one allocation row. No other row is touched.
func (l *Ledger) Deallocate(ctx context.Context, ref AllocationRef, actor string) error {
	err := l.txr.Transact(ctx, func(tx repositories.Tx) error {
		switch ref.Kind {
		case BuildAllocation:
			if _, err := tx.BuildItem(ref.ID); err != nil {
				return err
			}
			tx.DeleteBuildItem(ref.ID)
		case SalesAllocation:
			if _, err := tx.SalesOrderAllocation(ref.ID); err != nil {
				return err
			}
			tx.DeleteSalesOrderAllocation(ref.ID)
		default:
			return errs.Validation("unknown allocation kind %d", ref.Kind)
		}
		tx.Audit(entities.NewAuditEntry(actor, "allocation.remove",
			fmt.Sprintf("%s %d", ref.Kind, ref.ID)))
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("deallocated stock",
		zap.String("kind", ref.Kind.String()),
		zap.Int64("allocation", int64(ref.ID)),
		zap.String("actor", actor))
	return nil
}
