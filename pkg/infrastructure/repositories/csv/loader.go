// Package csv loads stockcore datasets from a directory of CSV fixture files
// into an in-memory store.
//
// Every file is optional except parts.csv. Rows reference each other by id, so
// files load in dependency order: categories and locations first, then parts,
// then everything that points at a part.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/infrastructure/repositories/memory"
	"github.com/openmfg/stockcore/pkg/tree"
)

// Loader reads a dataset directory into a memory.Store.
type Loader struct{}

// NewLoader creates a new CSV loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all recognized CSV files under dir and returns a populated store.
func (l *Loader) Load(dir string) (*memory.Store, error) {
	store := memory.NewStore()

	steps := []struct {
		file string
		load func(records [][]string, store *memory.Store) error
	}{
		{"categories.csv", l.loadCategories},
		{"locations.csv", l.loadLocations},
		{"parts.csv", l.loadParts},
		{"supplier_parts.csv", l.loadSupplierParts},
		{"stock.csv", l.loadStock},
		{"bom.csv", l.loadBom},
		{"builds.csv", l.loadBuilds},
		{"purchase_orders.csv", l.loadPurchaseOrders},
		{"purchase_order_lines.csv", l.loadPurchaseOrderLines},
		{"sales_orders.csv", l.loadSalesOrders},
		{"sales_order_lines.csv", l.loadSalesOrderLines},
		{"build_items.csv", l.loadBuildItems},
		{"sales_allocations.csv", l.loadSalesAllocations},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		records, err := readRecords(path)
		if errors.Is(err, fs.ErrNotExist) {
			if step.file == "parts.csv" {
				return nil, fmt.Errorf("dataset %s has no parts.csv", dir)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := step.load(records, store); err != nil {
			return nil, fmt.Errorf("%s: %w", step.file, err)
		}
	}

	return store, nil
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty, expected a header row", path)
	}
	return records, nil
}

func (l *Loader) loadCategories(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "name", "parent_id", "structural"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		parentID, err := parseOptionalID(record[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid parent_id: %w", row, err)
		}
		structural, err := parseBool(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid structural: %w", row, err)
		}

		cat := &entities.PartCategory{ID: id, Name: record[1], ParentID: parentID, Structural: structural}
		if err := store.AddCategory(cat); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadLocations(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "name", "parent_id", "structural"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		parentID, err := parseOptionalID(record[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid parent_id: %w", row, err)
		}
		structural, err := parseBool(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid structural: %w", row, err)
		}

		loc := &entities.StockLocation{ID: id, Name: record[1], ParentID: parentID, Structural: structural}
		if err := store.AddLocation(loc); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadParts(records [][]string, store *memory.Store) error {
	expectedHeader := []string{
		"id", "name", "is_template", "trackable", "assembly", "variant_of",
		"pack_size", "minimum_stock", "default_location_id", "category_id",
	}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		part, err := parsePart(record)
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := store.AddPart(part); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func parsePart(record []string) (*entities.Part, error) {
	id, err := parseID(record[0])
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}

	part, err := entities.NewPart(id, record[1])
	if err != nil {
		return nil, err
	}

	if part.IsTemplate, err = parseBool(record[2]); err != nil {
		return nil, fmt.Errorf("invalid is_template: %w", err)
	}
	if part.Trackable, err = parseBool(record[3]); err != nil {
		return nil, fmt.Errorf("invalid trackable: %w", err)
	}
	if part.Assembly, err = parseBool(record[4]); err != nil {
		return nil, fmt.Errorf("invalid assembly: %w", err)
	}
	if part.VariantOf, err = parseOptionalID(record[5]); err != nil {
		return nil, fmt.Errorf("invalid variant_of: %w", err)
	}
	if record[6] != "" {
		if part.PackSize, err = decimal.NewFromString(record[6]); err != nil {
			return nil, fmt.Errorf("invalid pack_size: %s", record[6])
		}
	}
	if record[7] != "" {
		if part.MinimumStock, err = decimal.NewFromString(record[7]); err != nil {
			return nil, fmt.Errorf("invalid minimum_stock: %s", record[7])
		}
	}
	if part.DefaultLocationID, err = parseOptionalID(record[8]); err != nil {
		return nil, fmt.Errorf("invalid default_location_id: %w", err)
	}
	if part.CategoryID, err = parseOptionalID(record[9]); err != nil {
		return nil, fmt.Errorf("invalid category_id: %w", err)
	}
	return part, nil
}

func (l *Loader) loadSupplierParts(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "part_id", "sku", "pack_size"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		partID, err := parseID(record[1])
		if err != nil {
			return fmt.Errorf("row %d: invalid part_id: %w", row, err)
		}
		sp := &entities.SupplierPart{ID: id, PartID: partID, SKU: record[2]}
		if record[3] != "" {
			if sp.PackSize, err = decimal.NewFromString(record[3]); err != nil {
				return fmt.Errorf("row %d: invalid pack_size: %s", row, record[3])
			}
		}
		if err := store.AddSupplierPart(sp); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadStock(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "part_id", "location_id", "quantity", "serial", "batch", "belongs_to", "status"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		item, err := parseStockItem(record)
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := store.AddStockItem(item); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func parseStockItem(record []string) (*entities.StockItem, error) {
	id, err := parseID(record[0])
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	partID, err := parseID(record[1])
	if err != nil {
		return nil, fmt.Errorf("invalid part_id: %w", err)
	}
	quantity, err := decimal.NewFromString(record[3])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", record[3])
	}

	item, err := entities.NewStockItem(id, partID, quantity)
	if err != nil {
		return nil, err
	}

	if item.LocationID, err = parseOptionalID(record[2]); err != nil {
		return nil, fmt.Errorf("invalid location_id: %w", err)
	}
	item.Serial = record[4]
	item.Batch = record[5]
	if item.BelongsTo, err = parseOptionalID(record[6]); err != nil {
		return nil, fmt.Errorf("invalid belongs_to: %w", err)
	}
	if item.Status, err = parseStockStatus(record[7]); err != nil {
		return nil, err
	}
	return item, nil
}

func (l *Loader) loadBom(records [][]string, store *memory.Store) error {
	expectedHeader := []string{
		"id", "assembly_part_id", "sub_part_id", "quantity", "reference",
		"inherited", "allow_variants", "optional", "consumable", "validated", "substitutes",
	}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		item, err := parseBomItem(record)
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := store.AddBomItem(item); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func parseBomItem(record []string) (*entities.BomItem, error) {
	id, err := parseID(record[0])
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	assemblyID, err := parseID(record[1])
	if err != nil {
		return nil, fmt.Errorf("invalid assembly_part_id: %w", err)
	}
	subPartID, err := parseID(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid sub_part_id: %w", err)
	}
	quantity, err := decimal.NewFromString(record[3])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", record[3])
	}

	item, err := entities.NewBomItem(id, assemblyID, subPartID, quantity)
	if err != nil {
		return nil, err
	}

	item.Reference = record[4]
	if item.Inherited, err = parseBool(record[5]); err != nil {
		return nil, fmt.Errorf("invalid inherited: %w", err)
	}
	if item.AllowVariants, err = parseBool(record[6]); err != nil {
		return nil, fmt.Errorf("invalid allow_variants: %w", err)
	}
	if item.Optional, err = parseBool(record[7]); err != nil {
		return nil, fmt.Errorf("invalid optional: %w", err)
	}
	if item.Consumable, err = parseBool(record[8]); err != nil {
		return nil, fmt.Errorf("invalid consumable: %w", err)
	}
	if item.Validated, err = parseBool(record[9]); err != nil {
		return nil, fmt.Errorf("invalid validated: %w", err)
	}
	if item.Substitutes, err = parseIDList(record[10]); err != nil {
		return nil, fmt.Errorf("invalid substitutes: %w", err)
	}
	return item, nil
}

func (l *Loader) loadBuilds(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "reference", "part_id", "quantity", "completed", "status", "target_date"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		partID, err := parseID(record[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid part_id: %w", row, err)
		}
		quantity, err := decimal.NewFromString(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid quantity: %s", row, record[3])
		}
		completed := decimal.Zero
		if record[4] != "" {
			if completed, err = decimal.NewFromString(record[4]); err != nil {
				return fmt.Errorf("row %d: invalid completed: %s", row, record[4])
			}
		}
		status, err := parseBuildStatus(record[5])
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		targetDate, err := parseOptionalDate(record[6])
		if err != nil {
			return fmt.Errorf("row %d: invalid target_date: %w", row, err)
		}

		build := &entities.BuildOrder{
			ID:         id,
			Reference:  record[1],
			PartID:     partID,
			Quantity:   quantity,
			Completed:  completed,
			Status:     status,
			TargetDate: targetDate,
		}
		if err := store.AddBuildOrder(build); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadPurchaseOrders(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "reference", "status", "target_date"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		status, err := parsePurchaseStatus(record[2])
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		targetDate, err := parseOptionalDate(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid target_date: %w", row, err)
		}

		order := &entities.PurchaseOrder{ID: id, Reference: record[1], Status: status, TargetDate: targetDate}
		if err := store.AddPurchaseOrder(order); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadPurchaseOrderLines(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "order_id", "supplier_part_id", "quantity", "received", "target_date"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		orderID, err := parseID(record[1])
		if err != nil {
			return fmt.Errorf("row %d: invalid order_id: %w", row, err)
		}
		supplierPartID, err := parseID(record[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid supplier_part_id: %w", row, err)
		}
		quantity, err := decimal.NewFromString(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid quantity: %s", row, record[3])
		}
		received := decimal.Zero
		if record[4] != "" {
			if received, err = decimal.NewFromString(record[4]); err != nil {
				return fmt.Errorf("row %d: invalid received: %s", row, record[4])
			}
		}
		targetDate, err := parseOptionalDate(record[5])
		if err != nil {
			return fmt.Errorf("row %d: invalid target_date: %w", row, err)
		}

		line := &entities.PurchaseOrderLine{
			ID:             id,
			OrderID:        orderID,
			SupplierPartID: supplierPartID,
			Quantity:       quantity,
			Received:       received,
			TargetDate:     targetDate,
		}
		if err := store.AddPurchaseOrderLine(line); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadSalesOrders(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "reference", "status", "target_date"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		status, err := parseSalesStatus(record[2])
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		targetDate, err := parseOptionalDate(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid target_date: %w", row, err)
		}

		order := &entities.SalesOrder{ID: id, Reference: record[1], Status: status, TargetDate: targetDate}
		if err := store.AddSalesOrder(order); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadSalesOrderLines(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "order_id", "part_id", "quantity", "shipped", "target_date"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		id, err := parseID(record[0])
		if err != nil {
			return fmt.Errorf("row %d: invalid id: %w", row, err)
		}
		orderID, err := parseID(record[1])
		if err != nil {
			return fmt.Errorf("row %d: invalid order_id: %w", row, err)
		}
		partID, err := parseID(record[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid part_id: %w", row, err)
		}
		quantity, err := decimal.NewFromString(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid quantity: %s", row, record[3])
		}
		shipped := decimal.Zero
		if record[4] != "" {
			if shipped, err = decimal.NewFromString(record[4]); err != nil {
				return fmt.Errorf("row %d: invalid shipped: %s", row, record[4])
			}
		}
		targetDate, err := parseOptionalDate(record[5])
		if err != nil {
			return fmt.Errorf("row %d: invalid target_date: %w", row, err)
		}

		line := &entities.SalesOrderLine{
			ID:         id,
			OrderID:    orderID,
			PartID:     partID,
			Quantity:   quantity,
			Shipped:    shipped,
			TargetDate: targetDate,
		}
		if err := store.AddSalesOrderLine(line); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadBuildItems(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "build_id", "bom_item_id", "stock_item_id", "quantity"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		ids := make([]tree.ID, 4)
		for col := 0; col < 4; col++ {
			id, err := parseID(record[col])
			if err != nil {
				return fmt.Errorf("row %d: invalid %s: %w", row, expectedHeader[col], err)
			}
			ids[col] = id
		}
		quantity, err := decimal.NewFromString(record[4])
		if err != nil {
			return fmt.Errorf("row %d: invalid quantity: %s", row, record[4])
		}

		item, err := entities.NewBuildItem(ids[0], ids[1], ids[2], ids[3], quantity)
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := store.AddBuildItem(item); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

func (l *Loader) loadSalesAllocations(records [][]string, store *memory.Store) error {
	expectedHeader := []string{"id", "line_id", "stock_item_id", "quantity"}
	if err := validateHeader(records[0], expectedHeader); err != nil {
		return err
	}

	for i, record := range records[1:] {
		row := i + 2
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("row %d: expected %d columns, got %d", row, len(expectedHeader), len(record))
		}

		ids := make([]tree.ID, 3)
		for col := 0; col < 3; col++ {
			id, err := parseID(record[col])
			if err != nil {
				return fmt.Errorf("row %d: invalid %s: %w", row, expectedHeader[col], err)
			}
			ids[col] = id
		}
		quantity, err := decimal.NewFromString(record[3])
		if err != nil {
			return fmt.Errorf("row %d: invalid quantity: %s", row, record[3])
		}

		alloc, err := entities.NewSalesOrderAllocation(ids[0], ids[1], ids[2], quantity)
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := store.AddSalesOrderAllocation(alloc); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return nil
}

// ── Field parsers ──

func validateHeader(actual, expected []string) error {
	if len(actual) != len(expected) {
		return fmt.Errorf("header mismatch: expected %v, got %v", expected, actual)
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return fmt.Errorf("header mismatch: expected %v, got %v", expected, actual)
		}
	}
	return nil
}

func parseID(s string) (tree.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a valid id: %q", s)
	}
	return tree.ID(n), nil
}

func parseOptionalID(s string) (*tree.ID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := parseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseIDList(s string) ([]tree.ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var ids []tree.ID
	for _, token := range strings.Split(s, "|") {
		id, err := parseID(token)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("not a valid boolean: %q", s)
	}
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

func parseStockStatus(s string) (entities.StockStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ok":
		return entities.StockOK, nil
	case "attention":
		return entities.StockAttention, nil
	case "damaged":
		return entities.StockDamaged, nil
	case "destroyed":
		return entities.StockDestroyed, nil
	case "rejected":
		return entities.StockRejected, nil
	case "lost":
		return entities.StockLost, nil
	case "quarantined":
		return entities.StockQuarantined, nil
	default:
		return entities.StockOK, fmt.Errorf("invalid stock status: %q", s)
	}
}

func parseBuildStatus(s string) (entities.BuildStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return entities.BuildPending, nil
	case "production":
		return entities.BuildProduction, nil
	case "cancelled":
		return entities.BuildCancelled, nil
	case "complete":
		return entities.BuildComplete, nil
	default:
		return entities.BuildPending, fmt.Errorf("invalid build status: %q", s)
	}
}

func parsePurchaseStatus(s string) (entities.PurchaseOrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return entities.PurchasePending, nil
	case "placed":
		return entities.PurchasePlaced, nil
	case "complete":
		return entities.PurchaseComplete, nil
	case "cancelled":
		return entities.PurchaseCancelled, nil
	case "lost":
		return entities.PurchaseLost, nil
	case "returned":
		return entities.PurchaseReturned, nil
	default:
		return entities.PurchasePending, fmt.Errorf("invalid purchase order status: %q", s)
	}
}

func parseSalesStatus(s string) (entities.SalesOrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return entities.SalesPending, nil
	case "in progress", "in_progress":
		return entities.SalesInProgress, nil
	case "shipped":
		return entities.SalesShipped, nil
	case "cancelled":
		return entities.SalesCancelled, nil
	case "returned":
		return entities.SalesReturned, nil
	default:
		return entities.SalesPending, fmt.Errorf("invalid sales order status: %q", s)
	}
}
