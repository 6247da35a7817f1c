package repositories

import (
	"context"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// BomRepository provides read access to the full BomItem collection. BOM rows
// are authored externally; the core only reads them, except for the validated
// flag which is mutated through a transaction.
type BomRepository interface {
	BomItem(ctx context.Context, id tree.ID) (*entities.BomItem, error)
	BomItems(ctx context.Context) ([]*entities.BomItem, error)
	BomItemsForAssembly(ctx context.Context, assemblyID tree.ID) ([]*entities.BomItem, error)
}
