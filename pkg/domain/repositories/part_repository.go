// Package repositories defines the read and transaction interfaces the
// stockcore services require from the backing store. The store itself is a
// collaborator; the in-memory implementation lives under
// pkg/infrastructure/repositories/memory.
package repositories

import (
	"context"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/tree"
)

// PartRepository provides access to the part catalog and its hierarchies.
type PartRepository interface {
	Part(ctx context.Context, id tree.ID) (*entities.Part, error)
	Parts(ctx context.Context) ([]*entities.Part, error)
	SupplierPart(ctx context.Context, id tree.ID) (*entities.SupplierPart, error)

	// VariantTree is the nested-set index over the part variant hierarchy
	// (parent pointer: Part.VariantOf).
	VariantTree(ctx context.Context) (*tree.Index, error)

	// CategoryTree is the nested-set index over part categories.
	CategoryTree(ctx context.Context) (*tree.Index, error)
}
