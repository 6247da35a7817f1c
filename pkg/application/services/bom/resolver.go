// Package bom resolves effective bills of materials: direct rows, rows
// inherited from template assemblies, substitution and variant acceptance,
// and the validation checksum protocol.
package bom

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/domain/repositories"
	"github.com/openmfg/stockcore/pkg/tree"
)

// maxBomDepth bounds traversal of the assembly graph. A well-formed catalog
// never approaches this; exceeding it means a cycle slipped past write-time
// validation and the operation fails with an IntegrityError instead of
// looping.
const maxBomDepth = 64

// Resolver computes effective BOMs over the part catalog.
type Resolver struct {
	parts  repositories.PartRepository
	boms   repositories.BomRepository
	txr    repositories.Transactor
	logger *zap.Logger
}

// NewResolver creates a BOM resolver. A nil logger disables logging.
func NewResolver(parts repositories.PartRepository, boms repositories.BomRepository, txr repositories.Transactor, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{parts: parts, boms: boms, txr: txr, logger: logger}
}

// ResolvedLine is one row of an effective BOM: the underlying row, the
// template assembly it was inherited from (nil for direct rows), and the
// expansion of acceptable alternatives.
type ResolvedLine struct {
	Item *entities.BomItem

	// InheritedFrom is set when the row is defined on an ancestor template
	// rather than on the assembly itself.
	InheritedFrom *tree.ID

	// Substitutes are the row's explicit alternate sub parts.
	Substitutes []tree.ID

	// Variants are the variant descendants of the sub part, populated only
	// when the row allows variants.
	Variants []tree.ID
}

// ItemsFor returns the direct BOM rows of an assembly, in id order.
func (r *Resolver) ItemsFor(ctx context.Context, assemblyID tree.ID) ([]*entities.BomItem, error) {
	if _, err := r.parts.Part(ctx, assemblyID); err != nil {
		return nil, err
	}
	return r.boms.BomItemsForAssembly(ctx, assemblyID)
}

// UsedInFilter returns the predicate matching every BOM row that uses the
// target part, per the four acceptance clauses (direct, inherited,
// substitute, variant).
func (r *Resolver) UsedInFilter(ctx context.Context, targetID tree.ID) (Predicate, error) {
	if _, err := r.parts.Part(ctx, targetID); err != nil {
		return nil, err
	}
	variants, err := r.parts.VariantTree(ctx)
	if err != nil {
		return nil, err
	}
	return usedInPredicate(targetID, variants), nil
}

// UsedIn returns every BOM row that uses the target part, in id order.
func (r *Resolver) UsedIn(ctx context.Context, targetID tree.ID) ([]*entities.BomItem, error) {
	pred, err := r.UsedInFilter(ctx, targetID)
	if err != nil {
		return nil, err
	}
	all, err := r.boms.BomItems(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entities.BomItem
	for _, item := range all {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// AssembliesFor returns the assemblies a BOM row applies to: the row's own
// assembly, expanded to the assembly's whole variant subtree when the row is
// inherited.
func (r *Resolver) AssembliesFor(ctx context.Context, item *entities.BomItem) ([]tree.ID, error) {
	if !item.Inherited {
		return []tree.ID{item.AssemblyPartID}, nil
	}
	variants, err := r.parts.VariantTree(ctx)
	if err != nil {
		return nil, err
	}
	return variants.Descendants(item.AssemblyPartID, true, tree.Unbounded)
}

// EffectiveBom resolves the full BOM of an assembly: its direct rows plus
// rows inherited from ancestor templates, each with substitutes and variant
// expansion. Rows are ordered direct-first, then by ancestor distance, then
// by row id.
func (r *Resolver) EffectiveBom(ctx context.Context, assemblyID tree.ID) ([]ResolvedLine, error) {
	if err := r.CheckAcyclic(ctx, assemblyID); err != nil {
		return nil, err
	}
	variants, err := r.parts.VariantTree(ctx)
	if err != nil {
		return nil, err
	}

	// Ancestors ordered root-first; walk them nearest-first so direct rows
	// come before inherited ones.
	ancestors, err := variants.Ancestors(assemblyID, true)
	if err != nil {
		return nil, err
	}

	var lines []ResolvedLine
	for i := len(ancestors) - 1; i >= 0; i-- {
		ancestorID := ancestors[i]
		items, err := r.boms.BomItemsForAssembly(ctx, ancestorID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if ancestorID != assemblyID && !item.Inherited {
				continue
			}
			line := ResolvedLine{Item: item, Substitutes: item.Substitutes}
			if ancestorID != assemblyID {
				from := ancestorID
				line.InheritedFrom = &from
			}
			if item.AllowVariants {
				line.Variants, err = variants.Descendants(item.SubPartID, false, tree.Unbounded)
				if err != nil {
					return nil, err
				}
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// AcceptsPart reports whether a part satisfies a BOM row's requirement:
// the declared sub part, an explicit substitute, or a variant descendant of
// the sub part when the row allows variants.
func (r *Resolver) AcceptsPart(ctx context.Context, item *entities.BomItem, partID tree.ID) (bool, error) {
	if item.SubPartID == partID || item.IsSubstitute(partID) {
		return true, nil
	}
	if !item.AllowVariants {
		return false, nil
	}
	variants, err := r.parts.VariantTree(ctx)
	if err != nil {
		return false, err
	}
	return variants.IsDescendantOf(partID, item.SubPartID, false), nil
}

// Checksum computes the deterministic hash over the assembly's direct BOM
// rows. Rows are sorted before hashing, so the value is independent of
// storage order and stable across recomputation while no row changes.
func (r *Resolver) Checksum(ctx context.Context, assemblyID tree.ID) (string, error) {
	if err := r.CheckAcyclic(ctx, assemblyID); err != nil {
		return "", err
	}
	items, err := r.boms.BomItemsForAssembly(ctx, assemblyID)
	if err != nil {
		return "", err
	}

	// Reference is free text; quoting it keeps the row encoding unambiguous
	// when it contains separators.
	rows := make([]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, fmt.Sprintf("%d:%s:%q", item.SubPartID, item.Quantity.String(), item.Reference))
	}
	sort.Strings(rows)

	h := md5.New()
	for _, row := range rows {
		h.Write([]byte(row))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidationState returns the assembly's current checksum together with its
// validity per IsValid.
func (r *Resolver) ValidationState(ctx context.Context, assemblyID tree.ID) (*entities.BomValidationResult, error) {
	checksum, err := r.Checksum(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	valid, err := r.IsValid(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	return &entities.BomValidationResult{
		AssemblyPartID: assemblyID,
		Checksum:       checksum,
		Valid:          valid,
	}, nil
}

// IsValid reports whether every direct BOM row is validated and the
// recomputed checksum matches the one stored at the last validation. An
// empty BOM is vacuously valid.
func (r *Resolver) IsValid(ctx context.Context, assemblyID tree.ID) (bool, error) {
	part, err := r.parts.Part(ctx, assemblyID)
	if err != nil {
		return false, err
	}
	items, err := r.boms.BomItemsForAssembly(ctx, assemblyID)
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		return true, nil
	}
	for _, item := range items {
		if !item.Validated {
			return false, nil
		}
	}
	checksum, err := r.Checksum(ctx, assemblyID)
	if err != nil {
		return false, err
	}
	return checksum == part.BomChecksum, nil
}

// Validate marks every direct BOM row validated and stores the current
// checksum on the assembly, in one transaction. It is idempotent.
func (r *Resolver) Validate(ctx context.Context, assemblyID tree.ID, actor string) error {
	if _, err := r.parts.Part(ctx, assemblyID); err != nil {
		return err
	}
	checksum, err := r.Checksum(ctx, assemblyID)
	if err != nil {
		return err
	}

	err = r.txr.Transact(ctx, func(tx repositories.Tx) error {
		tx.SetBomValidated(assemblyID, checksum)
		tx.Audit(entities.NewAuditEntry(actor, "bom.validate",
			fmt.Sprintf("assembly %d checksum %s", assemblyID, checksum)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to validate BOM for assembly %d: %w", assemblyID, err)
	}

	r.logger.Info("BOM validated",
		zap.Int64("assembly", int64(assemblyID)),
		zap.String("checksum", checksum),
		zap.String("actor", actor))
	return nil
}

// CheckAcyclic walks the assembly's sub-part edges and fails with an
// IntegrityError if the graph reaches the given assembly again or exceeds
// the depth bound.
func (r *Resolver) CheckAcyclic(ctx context.Context, assemblyID tree.ID) error {
	if _, err := r.parts.Part(ctx, assemblyID); err != nil {
		return err
	}
	return r.walkSubParts(ctx, assemblyID, assemblyID, 0)
}

func (r *Resolver) walkSubParts(ctx context.Context, rootID, currentID tree.ID, depth int) error {
	if depth > maxBomDepth {
		return errs.Integrity("BOM for assembly %d exceeds depth %d, assuming a cycle", rootID, maxBomDepth)
	}
	items, err := r.boms.BomItemsForAssembly(ctx, currentID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.SubPartID == rootID {
			return errs.Integrity("BOM cycle detected: assembly %d reachable from itself via part %d", rootID, currentID)
		}
		if err := r.walkSubParts(ctx, rootID, item.SubPartID, depth+1); err != nil {
			return err
		}
	}
	return nil
}
