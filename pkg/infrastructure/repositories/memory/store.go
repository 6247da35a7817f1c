// Package memory provides the in-memory queryable store backing the
// stockcore services: entity tables, cached nested-set indexes, an audit
// trail, and atomic staged-write transactions.
//
// Tree indexes are rebuilt when a structural mutation commits, never on
// read; readers receive immutable snapshots.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/domain/repositories"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Store is an in-memory implementation of every stockcore repository
// interface. Reads take a shared lock; transactions take the exclusive lock
// for their whole check-then-write span.
type Store struct {
	mu sync.RWMutex

	parts          map[tree.ID]*entities.Part
	supplierParts  map[tree.ID]*entities.SupplierPart
	categories     map[tree.ID]*entities.PartCategory
	locations      map[tree.ID]*entities.StockLocation
	stockItems     map[tree.ID]*entities.StockItem
	bomItems       map[tree.ID]*entities.BomItem
	builds         map[tree.ID]*entities.BuildOrder
	buildItems     map[tree.ID]*entities.BuildItem
	purchaseOrders map[tree.ID]*entities.PurchaseOrder
	purchaseLines  map[tree.ID]*entities.PurchaseOrderLine
	salesOrders    map[tree.ID]*entities.SalesOrder
	salesLines     map[tree.ID]*entities.SalesOrderLine
	salesAllocs    map[tree.ID]*entities.SalesOrderAllocation

	auditTrail []entities.AuditEntry

	// Cached nested-set indexes, replaced wholesale on structural mutation.
	variantTree   *tree.Index
	categoryTree  *tree.Index
	locationTree  *tree.Index
	installedTree *tree.Index

	nextID tree.ID
}

// Verify interface compliance
var (
	_ repositories.PartRepository  = (*Store)(nil)
	_ repositories.BomRepository   = (*Store)(nil)
	_ repositories.StockRepository = (*Store)(nil)
	_ repositories.OrderRepository = (*Store)(nil)
	_ repositories.Transactor      = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		parts:          make(map[tree.ID]*entities.Part),
		supplierParts:  make(map[tree.ID]*entities.SupplierPart),
		categories:     make(map[tree.ID]*entities.PartCategory),
		locations:      make(map[tree.ID]*entities.StockLocation),
		stockItems:     make(map[tree.ID]*entities.StockItem),
		bomItems:       make(map[tree.ID]*entities.BomItem),
		builds:         make(map[tree.ID]*entities.BuildOrder),
		buildItems:     make(map[tree.ID]*entities.BuildItem),
		purchaseOrders: make(map[tree.ID]*entities.PurchaseOrder),
		purchaseLines:  make(map[tree.ID]*entities.PurchaseOrderLine),
		salesOrders:    make(map[tree.ID]*entities.SalesOrder),
		salesLines:     make(map[tree.ID]*entities.SalesOrderLine),
		salesAllocs:    make(map[tree.ID]*entities.SalesOrderAllocation),
		nextID:         1,
	}
	s.variantTree, _ = tree.NewIndex(nil)
	s.categoryTree, _ = tree.NewIndex(nil)
	s.locationTree, _ = tree.NewIndex(nil)
	s.installedTree, _ = tree.NewIndex(nil)
	return s
}

// claimID advances the id watermark past a loaded entity's id.
func (s *Store) claimID(id tree.ID) {
	if id >= s.nextID {
		s.nextID = id + 1
	}
}

// ── Loading ──

// AddPart loads a part and rebuilds the variant tree.
func (s *Store) AddPart(p *entities.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.parts[p.ID]; dup {
		return errs.Validation("duplicate part id %d", p.ID)
	}
	cp := *p
	s.parts[p.ID] = &cp
	s.claimID(p.ID)
	return s.rebuildVariantTree()
}

// AddSupplierPart loads a supplier part.
func (s *Store) AddSupplierPart(sp *entities.SupplierPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.supplierParts[sp.ID]; dup {
		return errs.Validation("duplicate supplier part id %d", sp.ID)
	}
	if _, ok := s.parts[sp.PartID]; !ok {
		return errs.NotFound("part", sp.PartID)
	}
	cp := *sp
	s.supplierParts[sp.ID] = &cp
	s.claimID(sp.ID)
	return nil
}

// AddCategory loads a part category and rebuilds the category tree.
func (s *Store) AddCategory(c *entities.PartCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.categories[c.ID]; dup {
		return errs.Validation("duplicate category id %d", c.ID)
	}
	cp := *c
	s.categories[c.ID] = &cp
	s.claimID(c.ID)
	return s.rebuildCategoryTree()
}

// AddLocation loads a stock location and rebuilds the location tree.
func (s *Store) AddLocation(l *entities.StockLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.locations[l.ID]; dup {
		return errs.Validation("duplicate location id %d", l.ID)
	}
	cp := *l
	s.locations[l.ID] = &cp
	s.claimID(l.ID)
	return s.rebuildLocationTree()
}

// AddStockItem loads a stock item and rebuilds the installed-item tree.
func (s *Store) AddStockItem(item *entities.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.stockItems[item.ID]; dup {
		return errs.Validation("duplicate stock item id %d", item.ID)
	}
	if _, ok := s.parts[item.PartID]; !ok {
		return errs.NotFound("part", item.PartID)
	}
	if item.Serialized() && !item.Quantity.Equal(decimal.NewFromInt(1)) {
		return errs.Validation("serialized stock item %d must have quantity 1", item.ID)
	}
	cp := *item
	s.stockItems[item.ID] = &cp
	s.claimID(item.ID)
	return s.rebuildInstalledTree()
}

// AddBomItem loads a BOM row.
func (s *Store) AddBomItem(item *entities.BomItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.bomItems[item.ID]; dup {
		return errs.Validation("duplicate bom item id %d", item.ID)
	}
	if item.AssemblyPartID == item.SubPartID {
		return errs.Validation("bom item %d references its own assembly", item.ID)
	}
	cp := *item
	cp.Substitutes = append([]tree.ID(nil), item.Substitutes...)
	s.bomItems[item.ID] = &cp
	s.claimID(item.ID)
	return nil
}

// AddBuildOrder loads a build order.
func (s *Store) AddBuildOrder(b *entities.BuildOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.builds[b.ID]; dup {
		return errs.Validation("duplicate build order id %d", b.ID)
	}
	cp := *b
	s.builds[b.ID] = &cp
	s.claimID(b.ID)
	return nil
}

// AddBuildItem loads a build allocation row.
func (s *Store) AddBuildItem(item *entities.BuildItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.buildItems[item.ID]; dup {
		return errs.Validation("duplicate build item id %d", item.ID)
	}
	cp := *item
	s.buildItems[item.ID] = &cp
	s.claimID(item.ID)
	return nil
}

// AddPurchaseOrder loads a purchase order.
func (s *Store) AddPurchaseOrder(o *entities.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.purchaseOrders[o.ID]; dup {
		return errs.Validation("duplicate purchase order id %d", o.ID)
	}
	cp := *o
	s.purchaseOrders[o.ID] = &cp
	s.claimID(o.ID)
	return nil
}

// AddPurchaseOrderLine loads a purchase order line.
func (s *Store) AddPurchaseOrderLine(l *entities.PurchaseOrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.purchaseLines[l.ID]; dup {
		return errs.Validation("duplicate purchase line id %d", l.ID)
	}
	if _, ok := s.purchaseOrders[l.OrderID]; !ok {
		return errs.NotFound("purchase order", l.OrderID)
	}
	if _, ok := s.supplierParts[l.SupplierPartID]; !ok {
		return errs.NotFound("supplier part", l.SupplierPartID)
	}
	cp := *l
	s.purchaseLines[l.ID] = &cp
	s.claimID(l.ID)
	return nil
}

// AddSalesOrder loads a sales order.
func (s *Store) AddSalesOrder(o *entities.SalesOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.salesOrders[o.ID]; dup {
		return errs.Validation("duplicate sales order id %d", o.ID)
	}
	cp := *o
	s.salesOrders[o.ID] = &cp
	s.claimID(o.ID)
	return nil
}

// AddSalesOrderLine loads a sales order line.
func (s *Store) AddSalesOrderLine(l *entities.SalesOrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.salesLines[l.ID]; dup {
		return errs.Validation("duplicate sales line id %d", l.ID)
	}
	if _, ok := s.salesOrders[l.OrderID]; !ok {
		return errs.NotFound("sales order", l.OrderID)
	}
	cp := *l
	s.salesLines[l.ID] = &cp
	s.claimID(l.ID)
	return nil
}

// AddSalesOrderAllocation loads a sales allocation row.
func (s *Store) AddSalesOrderAllocation(a *entities.SalesOrderAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.salesAllocs[a.ID]; dup {
		return errs.Validation("duplicate sales allocation id %d", a.ID)
	}
	cp := *a
	s.salesAllocs[a.ID] = &cp
	s.claimID(a.ID)
	return nil
}

// ── Tree maintenance ──

func (s *Store) rebuildVariantTree() error {
	nodes := make([]tree.Node, 0, len(s.parts))
	for _, p := range s.parts {
		nodes = append(nodes, p.TreeNode())
	}
	ix, err := tree.NewIndex(nodes)
	if err != nil {
		return err
	}
	s.variantTree = ix
	return nil
}

func (s *Store) rebuildCategoryTree() error {
	nodes := make([]tree.Node, 0, len(s.categories))
	for _, c := range s.categories {
		nodes = append(nodes, c.TreeNode())
	}
	ix, err := tree.NewIndex(nodes)
	if err != nil {
		return err
	}
	s.categoryTree = ix
	return nil
}

func (s *Store) rebuildLocationTree() error {
	nodes := make([]tree.Node, 0, len(s.locations))
	for _, l := range s.locations {
		nodes = append(nodes, l.TreeNode())
	}
	ix, err := tree.NewIndex(nodes)
	if err != nil {
		return err
	}
	s.locationTree = ix
	return nil
}

func (s *Store) rebuildInstalledTree() error {
	nodes := make([]tree.Node, 0, len(s.stockItems))
	for _, item := range s.stockItems {
		nodes = append(nodes, item.TreeNode())
	}
	ix, err := tree.NewIndex(nodes)
	if err != nil {
		return err
	}
	s.installedTree = ix
	return nil
}

// ── PartRepository ──

// Part returns a copy of the part with the given id.
func (s *Store) Part(ctx context.Context, id tree.ID) (*entities.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parts[id]
	if !ok {
		return nil, errs.NotFound("part", id)
	}
	cp := *p
	return &cp, nil
}

// Parts returns all parts in id order.
func (s *Store) Parts(ctx context.Context) ([]*entities.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.Part, 0, len(s.parts))
	for _, p := range s.parts {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SupplierPart returns a copy of the supplier part with the given id.
func (s *Store) SupplierPart(ctx context.Context, id tree.ID) (*entities.SupplierPart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.supplierParts[id]
	if !ok {
		return nil, errs.NotFound("supplier part", id)
	}
	cp := *sp
	return &cp, nil
}

// VariantTree returns the current part variant index snapshot.
func (s *Store) VariantTree(ctx context.Context) (*tree.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variantTree, nil
}

// CategoryTree returns the current category index snapshot.
func (s *Store) CategoryTree(ctx context.Context) (*tree.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoryTree, nil
}

// ── BomRepository ──

// BomItem returns a copy of the BOM row with the given id.
func (s *Store) BomItem(ctx context.Context, id tree.ID) (*entities.BomItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.bomItems[id]
	if !ok {
		return nil, errs.NotFound("bom item", id)
	}
	return copyBomItem(item), nil
}

// BomItems returns all BOM rows in id order.
func (s *Store) BomItems(ctx context.Context) ([]*entities.BomItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.BomItem, 0, len(s.bomItems))
	for _, item := range s.bomItems {
		out = append(out, copyBomItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// BomItemsForAssembly returns the direct rows of one assembly in id order.
func (s *Store) BomItemsForAssembly(ctx context.Context, assemblyID tree.ID) ([]*entities.BomItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bomItemsForAssemblyLocked(assemblyID), nil
}

func (s *Store) bomItemsForAssemblyLocked(assemblyID tree.ID) []*entities.BomItem {
	var out []*entities.BomItem
	for _, item := range s.bomItems {
		if item.AssemblyPartID == assemblyID {
			out = append(out, copyBomItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyBomItem(item *entities.BomItem) *entities.BomItem {
	cp := *item
	cp.Substitutes = append([]tree.ID(nil), item.Substitutes...)
	return &cp
}

// ── StockRepository ──

// StockItem returns a copy of the stock item with the given id.
func (s *Store) StockItem(ctx context.Context, id tree.ID) (*entities.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stockItemLocked(id)
}

func (s *Store) stockItemLocked(id tree.ID) (*entities.StockItem, error) {
	item, ok := s.stockItems[id]
	if !ok {
		return nil, errs.NotFound("stock item", id)
	}
	cp := *item
	return &cp, nil
}

// StockItemsForParts returns stock items for the given parts in id order.
func (s *Store) StockItemsForParts(ctx context.Context, partIDs []tree.ID) ([]*entities.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := idSet(partIDs)
	var out []*entities.StockItem
	for _, item := range s.stockItems {
		if _, ok := want[item.PartID]; ok {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SerialsForParts returns every serial in use across the given parts.
func (s *Store) SerialsForParts(ctx context.Context, partIDs []tree.ID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serialsForPartsLocked(partIDs), nil
}

func (s *Store) serialsForPartsLocked(partIDs []tree.ID) []string {
	want := idSet(partIDs)
	var out []string
	for _, item := range s.stockItems {
		if item.Serial == "" {
			continue
		}
		if _, ok := want[item.PartID]; ok {
			out = append(out, item.Serial)
		}
	}
	sort.Strings(out)
	return out
}

// LocationTree returns the current location index snapshot.
func (s *Store) LocationTree(ctx context.Context) (*tree.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locationTree, nil
}

// InstalledTree returns the current installed-item index snapshot.
func (s *Store) InstalledTree(ctx context.Context) (*tree.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installedTree, nil
}

// ── OrderRepository ──

// BuildOrder returns a copy of the build order with the given id.
func (s *Store) BuildOrder(ctx context.Context, id tree.ID) (*entities.BuildOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.builds[id]
	if !ok {
		return nil, errs.NotFound("build order", id)
	}
	cp := *b
	return &cp, nil
}

// ActiveBuildsForParts returns active builds producing any of the given
// parts, in id order.
func (s *Store) ActiveBuildsForParts(ctx context.Context, partIDs []tree.ID) ([]*entities.BuildOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := idSet(partIDs)
	var out []*entities.BuildOrder
	for _, b := range s.builds {
		if !b.Status.Active() {
			continue
		}
		if _, ok := want[b.PartID]; ok {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// BuildItems returns the allocation rows for one (build, bom item) pair in
// id order.
func (s *Store) BuildItems(ctx context.Context, buildID, bomItemID tree.ID) ([]*entities.BuildItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entities.BuildItem
	for _, item := range s.buildItems {
		if item.BuildID == buildID && item.BomItemID == bomItemID {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AllocationsForStockItem returns every allocation row referencing the stock
// item, in id order.
func (s *Store) AllocationsForStockItem(ctx context.Context, stockItemID tree.ID) ([]*entities.BuildItem, []*entities.SalesOrderAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	builds, sales := s.allocationsForStockItemLocked(stockItemID)
	return builds, sales, nil
}

func (s *Store) allocationsForStockItemLocked(stockItemID tree.ID) ([]*entities.BuildItem, []*entities.SalesOrderAllocation) {
	var builds []*entities.BuildItem
	for _, item := range s.buildItems {
		if item.StockItemID == stockItemID {
			cp := *item
			builds = append(builds, &cp)
		}
	}
	sort.Slice(builds, func(i, j int) bool { return builds[i].ID < builds[j].ID })

	var sales []*entities.SalesOrderAllocation
	for _, a := range s.salesAllocs {
		if a.StockItemID == stockItemID {
			cp := *a
			sales = append(sales, &cp)
		}
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].ID < sales[j].ID })
	return builds, sales
}

// PurchaseOrder returns a copy of the purchase order with the given id.
func (s *Store) PurchaseOrder(ctx context.Context, id tree.ID) (*entities.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.purchaseOrders[id]
	if !ok {
		return nil, errs.NotFound("purchase order", id)
	}
	cp := *o
	return &cp, nil
}

// OpenPurchaseLines returns lines of open purchase orders whose supplier
// part resolves to the given part, in id order.
func (s *Store) OpenPurchaseLines(ctx context.Context, partID tree.ID) ([]*entities.PurchaseOrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entities.PurchaseOrderLine
	for _, line := range s.purchaseLines {
		sp, ok := s.supplierParts[line.SupplierPartID]
		if !ok || sp.PartID != partID {
			continue
		}
		order, ok := s.purchaseOrders[line.OrderID]
		if !ok || !order.Status.Open() {
			continue
		}
		cp := *line
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SalesOrder returns a copy of the sales order with the given id.
func (s *Store) SalesOrder(ctx context.Context, id tree.ID) (*entities.SalesOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.salesOrders[id]
	if !ok {
		return nil, errs.NotFound("sales order", id)
	}
	cp := *o
	return &cp, nil
}

// SalesOrderLine returns a copy of the sales order line with the given id.
func (s *Store) SalesOrderLine(ctx context.Context, id tree.ID) (*entities.SalesOrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.salesLines[id]
	if !ok {
		return nil, errs.NotFound("sales order line", id)
	}
	cp := *l
	return &cp, nil
}

// OpenSalesLines returns lines of open sales orders for the given part, in
// id order.
func (s *Store) OpenSalesLines(ctx context.Context, partID tree.ID) ([]*entities.SalesOrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entities.SalesOrderLine
	for _, line := range s.salesLines {
		if line.PartID != partID {
			continue
		}
		order, ok := s.salesOrders[line.OrderID]
		if !ok || !order.Status.Open() {
			continue
		}
		cp := *line
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AuditTrail returns a copy of the audit trail in append order.
func (s *Store) AuditTrail() []entities.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.AuditEntry(nil), s.auditTrail...)
}

func idSet(ids []tree.ID) map[tree.ID]struct{} {
	set := make(map[tree.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
