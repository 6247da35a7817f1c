package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Tx is the mutation surface of one atomic transaction. Reads observe
// committed state under the transaction's lock; writes are staged and applied
// all-or-nothing when the transaction function returns nil.
//
// Because reads and the subsequent staged writes execute under the same lock,
// a check-then-write sequence (such as an availability check before creating
// an allocation) cannot interleave with a concurrent transaction.
type Tx interface {
	// Reads under the transaction lock.
	StockItem(id tree.ID) (*entities.StockItem, error)
	AllocationsForStockItem(id tree.ID) ([]*entities.BuildItem, []*entities.SalesOrderAllocation, error)
	BomItemsForAssembly(assemblyID tree.ID) ([]*entities.BomItem, error)
	BuildItem(id tree.ID) (*entities.BuildItem, error)
	SalesOrderAllocation(id tree.ID) (*entities.SalesOrderAllocation, error)
	SerialsForParts(partIDs []tree.ID) ([]string, error)

	// NextID reserves a fresh row id.
	NextID() tree.ID

	// Staged writes.
	CreateBuildItem(item *entities.BuildItem)
	CreateSalesOrderAllocation(alloc *entities.SalesOrderAllocation)
	DeleteBuildItem(id tree.ID)
	DeleteSalesOrderAllocation(id tree.ID)
	CreateStockItem(item *entities.StockItem)
	UpdateStockQuantity(id tree.ID, quantity decimal.Decimal)
	SetBomValidated(assemblyID tree.ID, checksum string)
	Audit(entry entities.AuditEntry)
}

// Transactor runs a function inside a single atomic transaction. If fn
// returns an error nothing is applied; otherwise every staged write is
// applied before Transact returns.
type Transactor interface {
	Transact(ctx context.Context, fn func(tx Tx) error) error
}
