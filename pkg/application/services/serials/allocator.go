// Package serials parses, validates, and assigns serial numbers for
// trackable parts, including splitting a bulk stock item into serialized
// unit items.
package serials

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/domain/repositories"
	"github.com/openmfg/stockcore/pkg/tree"
)

// maxRangeExpansion caps how many serials a single a-b token may expand to,
// so a typo cannot allocate unbounded memory before the count check fires.
const maxRangeExpansion = 1000

// Allocator validates and assigns serial numbers against existing stock.
type Allocator struct {
	parts  repositories.PartRepository
	stock  repositories.StockRepository
	txr    repositories.Transactor
	logger *zap.Logger
}

// NewAllocator creates a serial allocator. A nil logger disables logging.
func NewAllocator(parts repositories.PartRepository, stock repositories.StockRepository, txr repositories.Transactor, logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{parts: parts, stock: stock, txr: txr, logger: logger}
}

// nextPlaceholder is the token that expands to the serial following the
// latest one already in use.
const nextPlaceholder = "~"

// Extract parses a serial specification into exactly quantity distinct
// serials. The specification is a comma-separated list of tokens, each a
// single value, an inclusive numeric range a-b expanded in ascending order,
// or the placeholder ~ expanding to the serial after latest (each further ~
// continues the sequence; with no latest serial the sequence starts at 1).
// Duplicates and a count mismatch fail with a ValidationError that reports
// every offending value.
func Extract(spec string, quantity int, latest string) ([]string, error) {
	if quantity <= 0 {
		return nil, errs.Validation("serial quantity must be positive, got %d", quantity)
	}
	if strings.TrimSpace(spec) == "" {
		return nil, errs.Validation("serial specification cannot be empty")
	}

	var out []string
	seen := make(map[string]struct{})
	verr := errs.Validation("invalid serial specification")

	add := func(serial string) {
		if _, dup := seen[serial]; dup {
			verr.WithField("serials", "duplicate serial %s", serial)
			return
		}
		seen[serial] = struct{}{}
		out = append(out, serial)
	}

	cursor := latest
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			verr.WithField("serials", "empty token in specification")
			continue
		}
		if token == nextPlaceholder {
			next := "1"
			if cursor != "" {
				next = NextAfter(cursor)
			}
			if next == "" {
				verr.WithField("serials", "no computable serial after %s", cursor)
				continue
			}
			cursor = next
			add(next)
			continue
		}
		if lo, hi, ok := parseRange(token); ok {
			if hi < lo {
				verr.WithField("serials", "range %s is not ascending", token)
				continue
			}
			if hi-lo+1 > maxRangeExpansion {
				verr.WithField("serials", "range %s expands to more than %d serials", token, maxRangeExpansion)
				continue
			}
			for v := lo; v <= hi; v++ {
				add(strconv.FormatInt(v, 10))
			}
			continue
		}
		add(token)
	}

	if verr.HasFieldErrors() {
		return nil, verr
	}
	if len(out) != quantity {
		return nil, errs.Validation("number of unique serials does not match required quantity").
			WithField("quantity", "expected %d, got %d", quantity, len(out))
	}
	return out, nil
}

// parseRange interprets a token of the form a-b where both sides are
// unsigned integers. Any other token is a single serial value.
func parseRange(token string) (lo, hi int64, ok bool) {
	idx := strings.Index(token, "-")
	if idx <= 0 || idx == len(token)-1 {
		return 0, 0, false
	}
	lo, err := strconv.ParseInt(token[:idx], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	hi, err = strconv.ParseInt(token[idx+1:], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// Check is the verdict for one candidate serial.
type Check struct {
	Serial string
	OK     bool
	Reason string
}

// ValidateEach checks every candidate serial against the part's variant
// family and returns a verdict per serial. If any serial is already in use
// (or empty) the returned error aggregates all of them; the checks are still
// returned for reporting.
func (a *Allocator) ValidateEach(ctx context.Context, candidates []string, partID tree.ID) ([]Check, error) {
	inUse, err := a.serialsInFamily(ctx, partID)
	if err != nil {
		return nil, err
	}
	return validateAgainst(candidates, inUse)
}

func validateAgainst(candidates []string, inUse map[string]struct{}) ([]Check, error) {
	checks := make([]Check, 0, len(candidates))
	verr := errs.Validation("invalid serial numbers")
	for _, serial := range candidates {
		check := Check{Serial: serial, OK: true}
		switch {
		case serial == "":
			check.OK = false
			check.Reason = "empty serial"
			verr.WithField("serials", "empty serial")
		default:
			if _, used := inUse[serial]; used {
				check.OK = false
				check.Reason = "already in use"
				verr.WithField("serials", "serial %s already in use", serial)
			}
		}
		checks = append(checks, check)
	}
	if verr.HasFieldErrors() {
		return checks, verr
	}
	return checks, nil
}

// NextAfter computes the serial following latest by incrementing its
// trailing numeric component, preserving zero padding. Serials with no
// numeric component have no computable next and yield the empty string.
func NextAfter(latest string) string {
	if latest == "" {
		return ""
	}
	i := len(latest)
	for i > 0 && latest[i-1] >= '0' && latest[i-1] <= '9' {
		i--
	}
	digits := latest[i:]
	if digits == "" {
		return ""
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Trailing digit run too long to increment numerically.
		return ""
	}
	next := latest[:i] + fmt.Sprintf("%0*d", len(digits), n+1)
	if next == latest {
		return ""
	}
	return next
}

// Info reports the latest serial in use across the part's variant family and
// the computed next serial, when one exists.
type Info struct {
	Latest string
	Next   string
}

// SerialInfo returns serial bookkeeping for a part.
func (a *Allocator) SerialInfo(ctx context.Context, partID tree.ID) (*Info, error) {
	if _, err := a.parts.Part(ctx, partID); err != nil {
		return nil, err
	}
	inUse, err := a.serialsInFamily(ctx, partID)
	if err != nil {
		return nil, err
	}

	info := &Info{Latest: latestSerial(inUse)}
	if info.Latest != "" {
		info.Next = NextAfter(info.Latest)
	}
	return info, nil
}

// latestSerial returns the greatest serial in the set per serialLess, or the
// empty string for an empty set.
func latestSerial(inUse map[string]struct{}) string {
	latest := ""
	for s := range inUse {
		if latest == "" || serialLess(latest, s) {
			latest = s
		}
	}
	return latest
}

// serialLess orders serials numerically when both are pure numbers, falling
// back to length-then-lexicographic so zero-padded schemes sort naturally.
func serialLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// Serialize splits quantity units off a bulk stock item into serialized
// quantity-one items, one per extracted serial, inside a single transaction.
// The item's unallocated balance and serial conflicts are both re-checked
// under the transaction lock, so a concurrent allocation cannot leave the
// item over-committed.
func (a *Allocator) Serialize(ctx context.Context, stockItemID tree.ID, spec string, quantity int, locationID *tree.ID, actor string) ([]*entities.StockItem, error) {
	item, err := a.stock.StockItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}
	if item.Serialized() {
		return nil, errs.Validation("stock item %d is already serialized", stockItemID)
	}
	part, err := a.parts.Part(ctx, item.PartID)
	if err != nil {
		return nil, err
	}
	if !part.Trackable {
		return nil, errs.Validation("part %d is not trackable", part.ID).
			WithField("part", "serial numbers require a trackable part")
	}
	qty := decimal.NewFromInt(int64(quantity))

	inUse, err := a.serialsInFamily(ctx, item.PartID)
	if err != nil {
		return nil, err
	}
	serials, err := Extract(spec, quantity, latestSerial(inUse))
	if err != nil {
		return nil, err
	}
	family, err := a.family(ctx, item.PartID)
	if err != nil {
		return nil, err
	}

	var created []*entities.StockItem
	err = a.txr.Transact(ctx, func(tx repositories.Tx) error {
		current, err := tx.StockItem(stockItemID)
		if err != nil {
			return err
		}
		if current.Serialized() {
			return errs.Validation("stock item %d is already serialized", stockItemID)
		}
		builds, sales, err := tx.AllocationsForStockItem(stockItemID)
		if err != nil {
			return err
		}
		allocated := decimal.Zero
		for _, b := range builds {
			allocated = allocated.Add(b.Quantity)
		}
		for _, s := range sales {
			allocated = allocated.Add(s.Quantity)
		}
		available := current.Quantity.Sub(allocated)
		if qty.GreaterThan(available) {
			return errs.Validation("cannot serialize more units than are unallocated").
				WithField("quantity", "requested %d, stock item %d has %s available", quantity, stockItemID, available)
		}

		existing, err := tx.SerialsForParts(family)
		if err != nil {
			return err
		}
		inUse := make(map[string]struct{}, len(existing))
		for _, s := range existing {
			inUse[s] = struct{}{}
		}
		if _, err := validateAgainst(serials, inUse); err != nil {
			return err
		}

		dest := locationID
		if dest == nil {
			dest = current.LocationID
		}

		tx.UpdateStockQuantity(current.ID, current.Quantity.Sub(qty))
		for _, serial := range serials {
			unit := &entities.StockItem{
				ID:         tx.NextID(),
				PartID:     current.PartID,
				LocationID: dest,
				Quantity:   decimal.NewFromInt(1),
				Serial:     serial,
				Batch:      current.Batch,
				Status:     current.Status,
			}
			tx.CreateStockItem(unit)
			created = append(created, unit)
		}
		tx.Audit(entities.NewAuditEntry(actor, "stock.serialize",
			fmt.Sprintf("stock item %d into %d serialized units", current.ID, quantity)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("serialized stock item",
		zap.Int64("stock_item", int64(stockItemID)),
		zap.Int("units", quantity),
		zap.String("actor", actor))
	return created, nil
}

// family returns the part ids whose serial namespaces overlap with partID:
// the whole variant tree the part belongs to.
func (a *Allocator) family(ctx context.Context, partID tree.ID) ([]tree.ID, error) {
	variants, err := a.parts.VariantTree(ctx)
	if err != nil {
		return nil, err
	}
	ancestors, err := variants.Ancestors(partID, true)
	if err != nil {
		return nil, err
	}
	root := ancestors[0]
	return variants.Descendants(root, true, tree.Unbounded)
}

func (a *Allocator) serialsInFamily(ctx context.Context, partID tree.ID) (map[string]struct{}, error) {
	family, err := a.family(ctx, partID)
	if err != nil {
		return nil, err
	}
	serials, err := a.stock.SerialsForParts(ctx, family)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(serials))
	for _, s := range serials {
		set[s] = struct{}{}
	}
	return set, nil
}
