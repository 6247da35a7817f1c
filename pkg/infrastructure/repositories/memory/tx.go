package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/domain/repositories"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Transact runs fn under the store's exclusive lock. Reads inside fn observe
// committed state; writes are staged on the transaction and applied only if
// fn returns nil, so a failing transaction leaves no partial effect.
//
// Holding the exclusive lock for the whole span serializes concurrent
// check-then-write sequences against the same rows.
func (s *Store) Transact(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// storeTx stages writes against a locked store.
type storeTx struct {
	store *Store
	ops   []func(s *Store)
}

// Verify interface compliance
var _ repositories.Tx = (*storeTx)(nil)

// ── Reads (lock already held) ──

func (tx *storeTx) StockItem(id tree.ID) (*entities.StockItem, error) {
	return tx.store.stockItemLocked(id)
}

func (tx *storeTx) AllocationsForStockItem(id tree.ID) ([]*entities.BuildItem, []*entities.SalesOrderAllocation, error) {
	builds, sales := tx.store.allocationsForStockItemLocked(id)
	return builds, sales, nil
}

func (tx *storeTx) BomItemsForAssembly(assemblyID tree.ID) ([]*entities.BomItem, error) {
	return tx.store.bomItemsForAssemblyLocked(assemblyID), nil
}

func (tx *storeTx) BuildItem(id tree.ID) (*entities.BuildItem, error) {
	item, ok := tx.store.buildItems[id]
	if !ok {
		return nil, errs.NotFound("build item", id)
	}
	cp := *item
	return &cp, nil
}

func (tx *storeTx) SalesOrderAllocation(id tree.ID) (*entities.SalesOrderAllocation, error) {
	a, ok := tx.store.salesAllocs[id]
	if !ok {
		return nil, errs.NotFound("sales allocation", id)
	}
	cp := *a
	return &cp, nil
}

func (tx *storeTx) SerialsForParts(partIDs []tree.ID) ([]string, error) {
	return tx.store.serialsForPartsLocked(partIDs), nil
}

func (tx *storeTx) NextID() tree.ID {
	id := tx.store.nextID
	tx.store.nextID++
	return id
}

// ── Staged writes ──

func (tx *storeTx) CreateBuildItem(item *entities.BuildItem) {
	cp := *item
	tx.ops = append(tx.ops, func(s *Store) {
		s.buildItems[cp.ID] = &cp
	})
}

func (tx *storeTx) CreateSalesOrderAllocation(alloc *entities.SalesOrderAllocation) {
	cp := *alloc
	tx.ops = append(tx.ops, func(s *Store) {
		s.salesAllocs[cp.ID] = &cp
	})
}

func (tx *storeTx) DeleteBuildItem(id tree.ID) {
	tx.ops = append(tx.ops, func(s *Store) {
		delete(s.buildItems, id)
	})
}

func (tx *storeTx) DeleteSalesOrderAllocation(id tree.ID) {
	tx.ops = append(tx.ops, func(s *Store) {
		delete(s.salesAllocs, id)
	})
}

func (tx *storeTx) CreateStockItem(item *entities.StockItem) {
	cp := *item
	tx.ops = append(tx.ops, func(s *Store) {
		s.stockItems[cp.ID] = &cp
		// Structural mutation of the installed-item hierarchy; refresh the
		// cached index once the row exists.
		_ = s.rebuildInstalledTree()
	})
}

func (tx *storeTx) UpdateStockQuantity(id tree.ID, quantity decimal.Decimal) {
	tx.ops = append(tx.ops, func(s *Store) {
		if item, ok := s.stockItems[id]; ok {
			item.Quantity = quantity
		}
	})
}

func (tx *storeTx) SetBomValidated(assemblyID tree.ID, checksum string) {
	tx.ops = append(tx.ops, func(s *Store) {
		for _, item := range s.bomItems {
			if item.AssemblyPartID == assemblyID {
				item.Validated = true
			}
		}
		if part, ok := s.parts[assemblyID]; ok {
			part.BomChecksum = checksum
		}
	})
}

func (tx *storeTx) Audit(entry entities.AuditEntry) {
	tx.ops = append(tx.ops, func(s *Store) {
		s.auditTrail = append(s.auditTrail, entry)
	})
}

func (tx *storeTx) commit() {
	for _, op := range tx.ops {
		op(tx.store)
	}
	tx.ops = nil
}
