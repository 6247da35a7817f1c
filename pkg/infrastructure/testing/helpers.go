// Package testing provides fixture builders shared by service and repository
// tests. Builders panic on invalid input: a broken fixture is a test bug, not
// a condition under test.
package testing

import (
	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/infrastructure/repositories/memory"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Part builds a plain sellable part.
func Part(id tree.ID, name string) *entities.Part {
	p, err := entities.NewPart(id, name)
	if err != nil {
		panic(err)
	}
	return p
}

// Template builds a template part, the structural root of a variant family.
func Template(id tree.ID, name string) *entities.Part {
	p := Part(id, name)
	p.IsTemplate = true
	return p
}

// Variant builds a part under templateID in the variant hierarchy.
func Variant(id tree.ID, name string, templateID tree.ID) *entities.Part {
	p := Part(id, name)
	p.VariantOf = &templateID
	return p
}

// Assembly builds a part that carries a BOM.
func Assembly(id tree.ID, name string) *entities.Part {
	p := Part(id, name)
	p.Assembly = true
	return p
}

// StockItem builds an in-stock item of the given quantity.
func StockItem(id, partID tree.ID, quantity string) *entities.StockItem {
	item, err := entities.NewStockItem(id, partID, Dec(quantity))
	if err != nil {
		panic(err)
	}
	return item
}

// BomItem builds a direct BOM row.
func BomItem(id, assemblyID, subPartID tree.ID, quantity string) *entities.BomItem {
	item, err := entities.NewBomItem(id, assemblyID, subPartID, Dec(quantity))
	if err != nil {
		panic(err)
	}
	return item
}

// MustAdd feeds entities into a store via the matching loader method and
// panics on the first failure.
func MustAdd(store *memory.Store, items ...any) {
	for _, item := range items {
		var err error
		switch v := item.(type) {
		case *entities.Part:
			err = store.AddPart(v)
		case *entities.SupplierPart:
			err = store.AddSupplierPart(v)
		case *entities.PartCategory:
			err = store.AddCategory(v)
		case *entities.StockLocation:
			err = store.AddLocation(v)
		case *entities.StockItem:
			err = store.AddStockItem(v)
		case *entities.BomItem:
			err = store.AddBomItem(v)
		case *entities.BuildOrder:
			err = store.AddBuildOrder(v)
		case *entities.BuildItem:
			err = store.AddBuildItem(v)
		case *entities.PurchaseOrder:
			err = store.AddPurchaseOrder(v)
		case *entities.PurchaseOrderLine:
			err = store.AddPurchaseOrderLine(v)
		case *entities.SalesOrder:
			err = store.AddSalesOrder(v)
		case *entities.SalesOrderLine:
			err = store.AddSalesOrderLine(v)
		case *entities.SalesOrderAllocation:
			err = store.AddSalesOrderAllocation(v)
		default:
			panic("unsupported fixture type")
		}
		if err != nil {
			panic(err)
		}
	}
}

// BuildWidgetCatalog populates a store with the scenario most service tests
// start from:
//
//	100 Widget        template assembly
//	├── 101 Widget A  variant
//	└── 102 Widget B  variant
//	200 Fastener      template
//	├── 201 Fastener Steel
//	└── 202 Fastener Brass
//	300 Bracket       plain part
//
// The Widget template carries one inherited BOM row requiring two Fastener
// Steel per unit, with Fastener Brass as a substitute, and one direct row on
// Widget A requiring one Bracket.
func BuildWidgetCatalog() *memory.Store {
	store := memory.NewStore()

	widget := Template(100, "Widget")
	widget.Assembly = true

	widgetA := Variant(101, "Widget A", 100)
	widgetA.Assembly = true
	widgetB := Variant(102, "Widget B", 100)
	widgetB.Assembly = true

	MustAdd(store,
		widget,
		widgetA,
		widgetB,
		Template(200, "Fastener"),
		Variant(201, "Fastener Steel", 200),
		Variant(202, "Fastener Brass", 200),
		Part(300, "Bracket"),
	)

	inherited := BomItem(1000, 100, 201, "2")
	inherited.Inherited = true
	inherited.Substitutes = []tree.ID{202}

	MustAdd(store,
		inherited,
		BomItem(1001, 101, 300, "1"),
	)

	return store
}
